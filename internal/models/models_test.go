package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimesheetStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     TimesheetStatus
		to       TimesheetStatus
		expected bool
	}{
		{TimesheetStatusPending, TimesheetStatusApproved, true},
		{TimesheetStatusPending, TimesheetStatusRejected, true},
		{TimesheetStatusPending, TimesheetStatusPending, false},
		{TimesheetStatusApproved, TimesheetStatusPending, false},
		{TimesheetStatusApproved, TimesheetStatusRejected, false},
		{TimesheetStatusRejected, TimesheetStatusPending, false},
		{TimesheetStatusRejected, TimesheetStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	name := "Jane Doe"
	empty := ""

	assert.Equal(t, "Jane Doe", (&User{Username: "jdoe", FullName: &name}).DisplayName())
	assert.Equal(t, "jdoe", (&User{Username: "jdoe", FullName: &empty}).DisplayName())
	assert.Equal(t, "jdoe", (&User{Username: "jdoe"}).DisplayName())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleManager.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())
	assert.False(t, Role("").Valid())
}
