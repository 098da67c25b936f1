package main

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gmdqs/attendance-admin-api/internal/repository"
	"github.com/gmdqs/attendance-admin-api/internal/router"
	"github.com/gmdqs/attendance-admin-api/internal/service"
	"github.com/gmdqs/attendance-admin-api/pkg/cache"
	"github.com/gmdqs/attendance-admin-api/pkg/config"
	"github.com/gmdqs/attendance-admin-api/pkg/database"
	"github.com/gmdqs/attendance-admin-api/pkg/logger"
	"github.com/gmdqs/attendance-admin-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, reference caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "attendance-admin-api",
		SingleSession:      false,
	})
	permissionService := service.NewPermissionService(permissionRepo, userRepo, logr)
	departmentService := service.NewDepartmentService(departmentRepo, cacheRepo, cfg.Reference.CacheTTL, validate, logr)
	statusService := service.NewStatusService(statusRepo, cacheRepo, cfg.Reference.CacheTTL, validate, logr)
	gridService := service.NewGridService(attendanceRepo, statusService, permissionService, validate, logr)
	employeeService := service.NewEmployeeService(employeeRepo, gridService, cfg.Attendance.CodePrefix, validate, logr)
	rosterService := service.NewRosterService(employeeRepo, cfg.Attendance.DefaultPageSize, logr)
	reportService := service.NewReportService(reportRepo, employeeRepo, validate, logr)
	exportService := service.NewExportService(employeeRepo, departmentRepo, statusService, attendanceRepo, reportService, permissionService, logr)
	metricsService := service.NewMetricsService()

	exportStore, err := storage.NewArchive(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("export storage init failed", "error", err)
	}
	signer := storage.NewDownloadTokenSigner(cfg.JWT.Secret, cfg.Export.URLTTL)
	archiveService := service.NewExportArchiveService(exportService, exportStore, signer, cfg.Export.Workers, logr)
	archiveService.Start(context.Background())
	defer archiveService.Stop()

	engine := router.New(cfg, logr, router.Services{
		Auth:        authService,
		Permissions: permissionService,
		Grid:        gridService,
		Roster:      rosterService,
		Employees:   employeeService,
		Departments: departmentService,
		Statuses:    statusService,
		Reports:     reportService,
		Export:      exportService,
		Archive:     archiveService,
		Metrics:     metricsService,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := engine.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
