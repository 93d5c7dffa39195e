package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Complaints      *handlers.ComplaintsHandler
	StaffComplaints *handlers.StaffComplaintsHandler
	Staff           *handlers.StaffHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/students/register", cfg.Auth.RegisterStudent)
	authGroup.Post("/students/login", cfg.Auth.LoginStudent)
	authGroup.Post("/staff/login", cfg.Auth.LoginStaff)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)

	student := app.Group("/complaints", cfg.AuthMiddleware.Handle, auth.RequireStudent())
	student.Post("", cfg.Complaints.Submit)
	student.Get("", cfg.Complaints.List)
	student.Get("/:id", cfg.Complaints.Get)
	student.Post("/:id/feedback", cfg.Complaints.SubmitFeedback)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	staff.Get("/complaints", cfg.StaffComplaints.List)
	staff.Get("/complaints/:id", cfg.StaffComplaints.Get)
	staff.Get("/complaints/:id/path", cfg.StaffComplaints.AssignmentPath)
	staff.Post("/complaints/:id/accept", cfg.StaffComplaints.Accept)
	staff.Post("/complaints/:id/progress", cfg.StaffComplaints.Progress)
	staff.Post("/complaints/:id/resolve", cfg.StaffComplaints.Resolve)

	assigners := staff.Group("", auth.RequireStaffRole(domain.RoleHOD, domain.RoleDean, domain.RoleAdmin))
	assigners.Get("/directory", cfg.Staff.Directory)
	assigners.Post("/complaints/:id/assign", cfg.StaffComplaints.Assign)
	assigners.Post("/complaints/:id/reassign", cfg.StaffComplaints.Reassign)
	assigners.Post("/complaints/:id/reject", cfg.StaffComplaints.Reject)

	admins := staff.Group("", auth.RequireStaffRole(domain.RoleAdmin))
	admins.Post("/complaints/:id/close", cfg.StaffComplaints.Close)

	app.Get("/departments", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Staff.Departments)
}
