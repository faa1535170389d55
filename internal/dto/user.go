package dto

import (
	"time"

	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64      `json:"id"`
	Username    string      `json:"username"`
	FullName    *string     `json:"full_name"`
	Email       *string     `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
	ManagerID   *uint64     `json:"manager_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	AllocatedHours float64 `json:"allocated_hours"`
}

// EnrichedUserDTO is a user with its manager, projects and team resolved
type EnrichedUserDTO struct {
	UserDTO
	Manager  *UserDTO     `json:"manager"`
	Projects []ProjectDTO `json:"projects"`
	Team     []UserDTO    `json:"team"`
}

// DirectoryDTO is the people listing
type DirectoryDTO struct {
	Managers  []EnrichedUserDTO `json:"managers"`
	Employees []EnrichedUserDTO `json:"employees"`
}

// TeamDTO lists a manager's direct reports. Empty is set when there are none.
type TeamDTO struct {
	Manager UserDTO   `json:"manager"`
	Members []UserDTO `json:"members"`
	Empty   bool      `json:"empty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		FullName:    user.FullName,
		Email:       user.Email,
		DisplayName: user.DisplayName(),
		Role:        user.Role,
		ManagerID:   user.ManagerID,
		CreatedAt:   user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users, never returning nil
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:             project.ID,
		Name:           project.Name,
		Description:    project.Description,
		AllocatedHours: project.AllocatedHours,
	}
}

// ToProjectDTOs converts a slice of projects, never returning nil
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p)
	}
	return out
}

// ToEnrichedUserDTO converts an enriched user
func ToEnrichedUserDTO(e services.EnrichedUser) EnrichedUserDTO {
	dto := EnrichedUserDTO{
		UserDTO:  ToUserDTO(e.User),
		Projects: ToProjectDTOs(e.Projects),
		Team:     ToUserDTOs(e.Team),
	}
	if e.Manager != nil {
		manager := ToUserDTO(*e.Manager)
		dto.Manager = &manager
	}
	return dto
}

// ToDirectoryDTO converts the people listing
func ToDirectoryDTO(dir *services.Directory) DirectoryDTO {
	return DirectoryDTO{
		Managers:  toEnrichedUserDTOs(dir.Managers),
		Employees: toEnrichedUserDTOs(dir.Employees),
	}
}

func toEnrichedUserDTOs(users []services.EnrichedUser) []EnrichedUserDTO {
	out := make([]EnrichedUserDTO, len(users))
	for i, u := range users {
		out[i] = ToEnrichedUserDTO(u)
	}
	return out
}

// ToTeamDTO converts a manager and its team
func ToTeamDTO(manager models.User, members []models.User) TeamDTO {
	return TeamDTO{
		Manager: ToUserDTO(manager),
		Members: ToUserDTOs(members),
		Empty:   len(members) == 0,
	}
}
