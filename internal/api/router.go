package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskflow/taskflow-core/internal/api/handler"
	"github.com/taskflow/taskflow-core/internal/api/middleware"
	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// Dependencies carries everything the router wires into handlers. Mongo and
// Redis are nil when the in-memory drivers are selected; the readiness probe
// skips what is not configured.
type Dependencies struct {
	Auth          ports.AuthService
	Users         ports.UserService
	Departments   ports.DepartmentService
	Clients       ports.ClientService
	Projects      ports.ProjectService
	Tasks         ports.TaskService
	Reports       ports.ReportService
	Notifications ports.NotificationService

	Mongo *mongo.Database
	Redis *redis.Client
	Log   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("taskflow"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Users)
	userHandler := handler.NewUserHandler(deps.Users)
	deptHandler := handler.NewDepartmentHandler(deps.Departments)
	clientHandler := handler.NewClientHandler(deps.Clients)
	projectHandler := handler.NewProjectHandler(deps.Projects, deps.Reports)
	taskHandler := handler.NewTaskHandler(deps.Tasks)
	reportHandler := handler.NewReportHandler(deps.Reports)
	notifHandler := handler.NewNotificationHandler(deps.Notifications)

	// --- Public routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated routes ---
	v1 := e.Group("/v1", middleware.Auth(deps.Auth))

	v1.GET("/me", authHandler.Me)

	// Fine-grained permission checks live in the services; route-level role
	// gates cover only groups whose whole surface shares one permission.
	v1.POST("/users", userHandler.Create, middleware.RequireRole(domain.RoleTeamLead))
	v1.GET("/users", userHandler.List)
	v1.GET("/users/:id", userHandler.Get)
	v1.PATCH("/users/:id", userHandler.Update)

	v1.GET("/departments", deptHandler.List)
	v1.GET("/departments/:id", deptHandler.Get)
	deptAdmin := middleware.RequireRole(domain.RoleTeamLead)
	v1.POST("/departments", deptHandler.Create, deptAdmin)
	v1.PATCH("/departments/:id", deptHandler.Update, deptAdmin)
	v1.DELETE("/departments/:id", deptHandler.Delete, deptAdmin)

	v1.GET("/clients", clientHandler.List)
	v1.GET("/clients/:id", clientHandler.Get)
	clientAdmin := middleware.RequireRole() // super admin only
	v1.POST("/clients", clientHandler.Create, clientAdmin)
	v1.PATCH("/clients/:id", clientHandler.Update, clientAdmin)
	v1.DELETE("/clients/:id", clientHandler.Delete, clientAdmin)

	v1.POST("/projects", projectHandler.Create)
	v1.GET("/projects", projectHandler.List)
	v1.GET("/projects/:id", projectHandler.Get)
	v1.PATCH("/projects/:id", projectHandler.Update)
	v1.DELETE("/projects/:id", projectHandler.Delete)
	v1.GET("/projects/:id/progress", projectHandler.Progress)

	v1.POST("/tasks", taskHandler.Create)
	v1.GET("/tasks", taskHandler.List)
	v1.GET("/tasks/:id", taskHandler.Get)
	v1.PATCH("/tasks/:id", taskHandler.Update)
	v1.DELETE("/tasks/:id", taskHandler.Delete)
	v1.POST("/tasks/:id/transition", taskHandler.Transition)
	v1.POST("/tasks/:id/hours", taskHandler.LogHours)
	v1.POST("/tasks/:id/comments", taskHandler.AddComment)
	v1.GET("/tasks/:id/comments", taskHandler.ListComments)
	v1.DELETE("/comments/:id", taskHandler.DeleteComment)

	v1.GET("/reports/summary", reportHandler.Summary)
	v1.GET("/reports/employees", reportHandler.EmployeeRollups)
	v1.GET("/reports/departments", reportHandler.DepartmentReports)

	v1.GET("/notifications", notifHandler.List)
	v1.POST("/notifications/:id/read", notifHandler.MarkRead)
	v1.POST("/notifications/:id/unread", notifHandler.MarkUnread)
	v1.POST("/notifications/read-all", notifHandler.MarkAllRead)
	v1.DELETE("/notifications/:id", notifHandler.Delete)

	return e
}
