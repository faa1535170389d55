package timesheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
)

func strPtr(s string) *string { return &s }

func makeTimesheet(id, userID, projectID uint64, status models.TimesheetStatus) models.Timesheet {
	return models.Timesheet{
		ID:        id,
		UserID:    userID,
		ProjectID: projectID,
		Status:    status,
		User:      models.User{ID: userID, Username: "user" + string(rune('a'+userID))},
		Project:   models.Project{ID: projectID, Name: "project" + string(rune('a'+projectID))},
	}
}

func ids(rows []models.Timesheet) []uint64 {
	out := make([]uint64, len(rows))
	for i, t := range rows {
		out[i] = t.ID
	}
	return out
}

func TestTotalHours_ExcludesWeekend(t *testing.T) {
	ts := models.Timesheet{
		MondayHours:    8,
		TuesdayHours:   8,
		WednesdayHours: 8,
		ThursdayHours:  8,
		FridayHours:    4,
		SaturdayHours:  6,
		SundayHours:    2,
	}

	assert.Equal(t, 36.0, TotalHours(ts))
}

func TestWeekKey_OrdersAcrossYears(t *testing.T) {
	a := models.Timesheet{Year: 2023, Week: 52}
	b := models.Timesheet{Year: 2024, Week: 1}
	c := models.Timesheet{Year: 2024, Week: 10}

	assert.Less(t, WeekKey(a), WeekKey(b))
	assert.Less(t, WeekKey(b), WeekKey(c))
}

func TestMonth_Range(t *testing.T) {
	m, err := ParseMonth("2024-03", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m.Start())
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), m.End())
	assert.True(t, m.Contains(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, m.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-02", m.Prev().String())
	assert.Equal(t, "2024-04", m.Next().String())
}

func TestMonth_WrapsYear(t *testing.T) {
	m, err := ParseMonth("2024-01", time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "2023-12", m.Prev().String())
	assert.Equal(t, "2024-02", m.Next().String())
	assert.Equal(t, "2025-01", MonthOf(time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)).Next().String())
}

func TestMonth_CanAdvance(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	past, _ := ParseMonth("2024-02", time.UTC)
	current, _ := ParseMonth("2024-03", time.UTC)
	future, _ := ParseMonth("2024-05", time.UTC)

	assert.True(t, past.CanAdvance(now))
	assert.False(t, current.CanAdvance(now))
	assert.False(t, future.CanAdvance(now))
}

func TestParseMonth_Invalid(t *testing.T) {
	_, err := ParseMonth("March 2024", time.UTC)
	assert.Error(t, err)

	_, err = ParseMonth("2024-13", time.UTC)
	assert.Error(t, err)
}

func TestPartition_DropsRejected(t *testing.T) {
	rows := []models.Timesheet{
		makeTimesheet(1, 1, 1, models.TimesheetStatusPending),
		makeTimesheet(2, 1, 1, models.TimesheetStatusApproved),
		makeTimesheet(3, 1, 1, models.TimesheetStatusRejected),
		makeTimesheet(4, 2, 1, models.TimesheetStatusPending),
	}

	board := Partition(rows)

	assert.Equal(t, []uint64{1, 4}, ids(board.Pending))
	assert.Equal(t, []uint64{2}, ids(board.Approved))
}

func TestBoard_MarkApprovedMovesToHead(t *testing.T) {
	board := Partition([]models.Timesheet{
		makeTimesheet(1, 1, 1, models.TimesheetStatusPending),
		makeTimesheet(2, 1, 1, models.TimesheetStatusApproved),
		makeTimesheet(3, 1, 1, models.TimesheetStatusPending),
	})

	approved, ok := board.FindPending(3)
	require.True(t, ok)
	approved.Status = models.TimesheetStatusApproved

	board.MarkApproved(approved)

	assert.Equal(t, []uint64{1}, ids(board.Pending))
	assert.Equal(t, []uint64{3, 2}, ids(board.Approved))
}

func TestBoard_MarkRejectedLeavesBothBuckets(t *testing.T) {
	board := Partition([]models.Timesheet{
		makeTimesheet(1, 1, 1, models.TimesheetStatusPending),
		makeTimesheet(2, 1, 1, models.TimesheetStatusApproved),
	})

	board.MarkRejected(1)

	assert.Empty(t, board.Pending)
	assert.Equal(t, []uint64{2}, ids(board.Approved))

	_, ok := board.FindPending(1)
	assert.False(t, ok)
}

func TestFilter_EmptyIsNoop(t *testing.T) {
	rows := []models.Timesheet{
		makeTimesheet(3, 1, 1, models.TimesheetStatusApproved),
		makeTimesheet(1, 2, 2, models.TimesheetStatusApproved),
		makeTimesheet(2, 3, 1, models.TimesheetStatusApproved),
	}

	assert.Equal(t, rows, Filter{}.Apply(rows))
}

func TestFilter_OrWithinAndAcross(t *testing.T) {
	rows := []models.Timesheet{
		makeTimesheet(1, 1, 1, models.TimesheetStatusApproved),
		makeTimesheet(2, 2, 1, models.TimesheetStatusApproved),
		makeTimesheet(3, 2, 2, models.TimesheetStatusApproved),
		makeTimesheet(4, 3, 1, models.TimesheetStatusApproved),
	}

	byUsers := Filter{UserIDs: []uint64{1, 2}}
	assert.Equal(t, []uint64{1, 2, 3}, ids(byUsers.Apply(rows)))

	byBoth := Filter{UserIDs: []uint64{1, 2}, ProjectIDs: []uint64{2}}
	assert.Equal(t, []uint64{3}, ids(byBoth.Apply(rows)))

	byProject := Filter{ProjectIDs: []uint64{1}}
	assert.Equal(t, []uint64{1, 2, 4}, ids(byProject.Apply(rows)))
}

func TestSelectIDs_KeepsRowOrder(t *testing.T) {
	rows := []models.Timesheet{
		makeTimesheet(5, 1, 1, models.TimesheetStatusApproved),
		makeTimesheet(6, 1, 1, models.TimesheetStatusApproved),
		makeTimesheet(7, 1, 1, models.TimesheetStatusApproved),
	}

	assert.Equal(t, []uint64{5, 7}, ids(SelectIDs(rows, []uint64{7, 5, 99})))
	assert.Empty(t, SelectIDs(rows, nil))
}

func TestSortState_SelectToggles(t *testing.T) {
	var state SortState

	state = state.Select(SortByProject)
	assert.Equal(t, SortState{Field: SortByProject, Direction: Asc}, state)

	state = state.Select(SortByProject)
	assert.Equal(t, SortState{Field: SortByProject, Direction: Desc}, state)

	state = state.Select(SortByProject)
	assert.Equal(t, Asc, state.Direction)

	state = state.Select(SortByTotalHours)
	assert.Equal(t, SortState{Field: SortByTotalHours, Direction: Asc}, state)
}

func TestSortState_ReselectReversesOrder(t *testing.T) {
	rows := []models.Timesheet{
		{ID: 1, MondayHours: 5},
		{ID: 2, MondayHours: 9},
		{ID: 3, MondayHours: 1},
	}

	asc := SortState{}.Select(SortByTotalHours)
	assert.Equal(t, []uint64{3, 1, 2}, ids(asc.Sort(rows)))

	desc := asc.Select(SortByTotalHours)
	assert.Equal(t, []uint64{2, 1, 3}, ids(desc.Sort(rows)))
}

func TestSortState_StableOnTies(t *testing.T) {
	rows := []models.Timesheet{
		{ID: 4, Project: models.Project{Name: "Beta"}},
		{ID: 2, Project: models.Project{Name: "Alpha"}},
		{ID: 9, Project: models.Project{Name: "Beta"}},
		{ID: 1, Project: models.Project{Name: "Alpha"}},
	}

	asc := SortState{Field: SortByProject, Direction: Asc}.Sort(rows)
	assert.Equal(t, []uint64{2, 1, 4, 9}, ids(asc))

	desc := SortState{Field: SortByProject, Direction: Desc}.Sort(rows)
	assert.Equal(t, []uint64{4, 9, 2, 1}, ids(desc))
}

func TestSortState_EmployeeUsesDisplayName(t *testing.T) {
	rows := []models.Timesheet{
		{ID: 1, User: models.User{Username: "zed", FullName: strPtr("Adam Zed")}},
		{ID: 2, User: models.User{Username: "bob"}},
	}

	sorted := SortState{Field: SortByEmployee, Direction: Asc}.Sort(rows)
	assert.Equal(t, []uint64{1, 2}, ids(sorted))
}

func TestSortState_WeekKeyAndDefault(t *testing.T) {
	rows := []models.Timesheet{
		{ID: 3, Year: 2024, Week: 10},
		{ID: 1, Year: 2024, Week: 9},
		{ID: 2, Year: 2023, Week: 52},
	}

	assert.Equal(t, []uint64{2, 1, 3}, ids(SortState{Field: SortByWeek, Direction: Asc}.Sort(rows)))
	assert.Equal(t, []uint64{1, 2, 3}, ids(SortState{Field: "unknown", Direction: Asc}.Sort(rows)))
	assert.Equal(t, []uint64{3, 1, 2}, ids(SortState{}.Sort(rows)), "no active field keeps input order")
}

func TestExportCSV_LineCount(t *testing.T) {
	approvedAt := time.Date(2024, 3, 12, 15, 30, 0, 0, time.UTC)
	rows := []models.Timesheet{
		{
			Year: 2024, Week: 10,
			MondayHours: 8, TuesdayHours: 8, WednesdayHours: 8, ThursdayHours: 8, FridayHours: 4,
			Status:     models.TimesheetStatusApproved,
			ApprovedAt: &approvedAt,
			User:       models.User{Username: "jdoe", FullName: strPtr("Jane Doe")},
			Project:    models.Project{Name: "Website Redesign"},
			Approver:   &models.User{Username: "boss"},
		},
		{
			Year: 2024, Week: 11,
			MondayHours: 7.5,
			Status:      models.TimesheetStatusApproved,
			User:        models.User{Username: "asmith"},
			Project:     models.Project{Name: "Mobile App"},
		},
	}

	out := string(ExportCSV(rows))
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "Employee,Project,Week,Year,Total Hours,Status,Approved By,Approved Date", lines[0])
	assert.Equal(t, "Jane Doe,Website Redesign,10,2024,36,approved,boss,2024-03-12", lines[1])
	assert.Equal(t, "asmith,Mobile App,11,2024,7.5,approved,,", lines[2])
}

func TestExportCSV_DoesNotEscape(t *testing.T) {
	rows := []models.Timesheet{
		{User: models.User{Username: "doe, jane"}, Project: models.Project{Name: `say "hi"`}},
	}

	lines := strings.Split(string(ExportCSV(rows)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `doe, jane,say "hi",`))
}

func TestExportFilename(t *testing.T) {
	m, _ := ParseMonth("2024-03", time.UTC)
	assert.Equal(t, "timesheets-2024-03.csv", ExportFilename(m, "csv"))
	assert.Equal(t, "timesheets-2024-03.xlsx", ExportFilename(m, "xlsx"))
}

func TestExportXLSX_Rows(t *testing.T) {
	rows := []models.Timesheet{
		{Year: 2024, Week: 10, MondayHours: 8, Status: models.TimesheetStatusApproved,
			User: models.User{Username: "jdoe"}, Project: models.Project{Name: "Website Redesign"}},
	}

	data, err := ExportXLSX(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, exportHeader, got[0])
	assert.Equal(t, "jdoe", got[1][0])
	assert.Equal(t, "Website Redesign", got[1][1])
	assert.Equal(t, "8", got[1][4])
}
