package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-admin-api/internal/middleware"
	"github.com/yukikurage/timesheet-admin-api/internal/models"
	"github.com/yukikurage/timesheet-admin-api/internal/repository"
	"github.com/yukikurage/timesheet-admin-api/internal/services"
)

// Routes holds everything RegisterRoutes wires together
type Routes struct {
	Auth      *AuthHandler
	Approvals *ApprovalHandler
	People    *PeopleHandler
	Tokens    *services.TokenService
	Users     repository.UserRepository
}

// RegisterRoutes mounts the API under /api. Session middleware must already be installed.
func RegisterRoutes(r gin.IRouter, rt Routes) {
	requireAuth := middleware.RequireAuth(rt.Tokens)
	loadActor := middleware.LoadActor(rt.Users)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", rt.Auth.Login)
			auth.POST("/token", rt.Auth.IssueToken)
			auth.POST("/logout", rt.Auth.Logout)
			auth.GET("/me", requireAuth, rt.Auth.GetCurrentUser)
		}

		// Approval routes (managers and admins)
		approvals := api.Group("/approvals")
		approvals.Use(requireAuth, loadActor, middleware.RequireRole(models.RoleManager, models.RoleAdmin))
		{
			approvals.GET("", rt.Approvals.GetBoard)
			approvals.GET("/export", rt.Approvals.Export)
			approvals.POST("/bulk-approve", rt.Approvals.BulkApprove)
			approvals.POST("/:id/approve", rt.Approvals.Approve)
			approvals.POST("/:id/reject", rt.Approvals.Reject)
		}

		// People routes (admins)
		people := api.Group("/people")
		people.Use(requireAuth, loadActor, middleware.RequireRole(models.RoleAdmin))
		{
			people.GET("", rt.People.ListPeople)
			people.POST("", rt.People.CreateUser)
			people.PUT("/:id", rt.People.UpdateUser)
			people.GET("/:id/team", rt.People.GetTeam)
			people.GET("/:id/projects", rt.People.GetProjects)
			people.GET("/:id/timesheets", rt.People.GetTimesheets)
		}
	}
}
