package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/handler"
	"github.com/gmdqs/attendance-admin-api/internal/middleware"
	"github.com/gmdqs/attendance-admin-api/internal/models"
	"github.com/gmdqs/attendance-admin-api/internal/service"
	"github.com/gmdqs/attendance-admin-api/pkg/config"
	"github.com/gmdqs/attendance-admin-api/pkg/logger"
	corsmiddleware "github.com/gmdqs/attendance-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gmdqs/attendance-admin-api/pkg/middleware/requestid"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth        *service.AuthService
	Permissions *service.PermissionService
	Grid        *service.GridService
	Roster      *service.RosterService
	Employees   *service.EmployeeService
	Departments *service.DepartmentService
	Statuses    *service.StatusService
	Reports     *service.ReportService
	Export      *service.ExportService
	Archive     *service.ExportArchiveService
	Metrics     *service.MetricsService
}

// New builds the gin engine with all routes mounted under the API prefix.
func New(cfg *config.Config, logr *zap.Logger, svcs Services) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svcs.Metrics))

	metricsHandler := handler.NewMetricsHandler(svcs.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	authHandler := handler.NewAuthHandler(svcs.Auth)
	attendanceHandler := handler.NewAttendanceHandler(svcs.Grid, svcs.Export, svcs.Metrics)
	employeeHandler := handler.NewEmployeeHandler(svcs.Employees, svcs.Roster)
	departmentHandler := handler.NewDepartmentHandler(svcs.Departments)
	statusHandler := handler.NewStatusHandler(svcs.Statuses)
	adminHandler := handler.NewAdminHandler(svcs.Permissions)
	reportHandler := handler.NewReportHandler(svcs.Reports, svcs.Export, svcs.Metrics)
	exportHandler := handler.NewExportHandler(svcs.Archive)
	calendarHandler := handler.NewCalendarHandler()

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		authed := auth.Group("", middleware.JWT(svcs.Auth))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	protected := api.Group("", middleware.JWT(svcs.Auth))

	protected.GET("/calendar/options", calendarHandler.Options)
	protected.GET("/permissions/me", adminHandler.Permissions)

	attendance := protected.Group("/attendance")
	{
		attendance.GET("", middleware.RequireCapability(svcs.Permissions, models.CapViewAttendance), attendanceHandler.Grid)
		attendance.PUT("", middleware.RequireCapability(svcs.Permissions, models.CapWriteAttendance), attendanceHandler.SetStatus)
		attendance.GET("/export", middleware.RequireCapability(svcs.Permissions, models.CapExportData), attendanceHandler.Export)
	}

	employees := protected.Group("/employees")
	{
		employees.GET("", middleware.RequireCapability(svcs.Permissions, models.CapViewAttendance), employeeHandler.List)
		employees.GET("/:id", middleware.RequireCapability(svcs.Permissions, models.CapViewAttendance), employeeHandler.Get)

		manage := employees.Group("", middleware.RequireCapability(svcs.Permissions, models.CapManageEmployees))
		manage.POST("", employeeHandler.Create)
		manage.PUT("/:id", employeeHandler.Update)
		manage.DELETE("/:id", employeeHandler.Delete)
	}

	departments := protected.Group("/departments")
	{
		departments.GET("", departmentHandler.List)

		manage := departments.Group("", middleware.RequireCapability(svcs.Permissions, models.CapManageEmployees))
		manage.POST("", departmentHandler.Create)
		manage.PUT("/:id", departmentHandler.Update)
		manage.DELETE("/:id", departmentHandler.Delete)
	}

	statuses := protected.Group("/statuses")
	{
		statuses.GET("", statusHandler.List)

		manage := statuses.Group("", middleware.RequireCapability(svcs.Permissions, models.CapManageEmployees))
		manage.POST("", statusHandler.Create)
		manage.PUT("/:id", statusHandler.Update)
		manage.PATCH("/:id/active", statusHandler.SetActive)
		manage.DELETE("/:id", statusHandler.Delete)
	}

	admins := protected.Group("/admins", middleware.RequireCapability(svcs.Permissions, models.CapManageAdmins))
	{
		admins.GET("", adminHandler.List)
		admins.PUT("/:id/permissions", adminHandler.UpdatePermissions)
		admins.DELETE("/:id/permissions", adminHandler.RevokePermissions)
	}

	reports := protected.Group("/reports", middleware.RequireCapability(svcs.Permissions, models.CapViewAttendance))
	{
		reports.POST("", reportHandler.Generate)
		reports.POST("/export", middleware.RequireCapability(svcs.Permissions, models.CapExportData), reportHandler.Export)
	}

	exports := protected.Group("/exports", middleware.RequireCapability(svcs.Permissions, models.CapExportData))
	{
		exports.POST("/grid", exportHandler.EnqueueGrid)
		exports.POST("/report", exportHandler.EnqueueReport)
		exports.GET("/jobs/:id", exportHandler.Status)
		exports.GET("/download", exportHandler.Download)
	}

	return r
}
