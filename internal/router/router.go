package router

import (
	"net/http"
	"time"

	"github.com/autogestion/autogestion-backend/internal/config"
	"github.com/autogestion/autogestion-backend/internal/handler"
	"github.com/autogestion/autogestion-backend/internal/middleware"
	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/response"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	StudentMgmt   *handler.StudentManagementHandler
	Enrollment    *handler.EnrollmentHandler
	Offering      *handler.OfferingHandler
	Attendance    *handler.AttendanceHandler
	Career        *handler.CareerHandler
	Subject       *handler.SubjectHandler
	Staff         *handler.StaffHandler
	Role          *handler.RoleHandler
	Dashboard     *handler.DashboardHandler
	Monitor       *handler.MonitorHandler
	System        *handler.SystemHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// counter backs the auth rate limiter.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	counter middleware.Counter,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(middleware.CacheControl(300))
	{
		publicAPI.GET("/careers", handlers.Career.GetAll)
	}

	authLimiter := middleware.NewRateLimiter(counter, "auth", cfg.AuthRateLimit, time.Minute, log)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore(), authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/staff/login", handlers.Auth.StaffLogin)

		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.GetStudentProfile)
		auth.GET("/staff/me", middleware.RequireStaffJWT(authService), handlers.Auth.GetStaffProfile)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
		middleware.NoStore(),
	)
	{
		studentAPI.GET("/offerings", handlers.StudentPortal.ListOfferings)
		studentAPI.GET("/offerings/:id/availability", handlers.StudentPortal.GetAvailability)
		studentAPI.POST("/offerings/:id/enrollments", handlers.StudentPortal.RequestEnrollment)
		studentAPI.GET("/enrollments", handlers.StudentPortal.ListEnrollments)
		studentAPI.DELETE("/enrollments/:id", handlers.StudentPortal.CancelEnrollment)
		studentAPI.GET("/attendance", handlers.StudentPortal.GetAttendance)
	}

	// ─── 3. WebSocket Group (token in query) ───────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/student/offerings/:id/availability", handlers.WS.AvailabilityStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireStaffJWT(authService))
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData) // Open to all staff

		adminAPI.GET("/system/metrics",
			middleware.RequirePermission(model.PermissionSystemRead),
			handlers.System.SystemMetricsSSE,
		)

		// Careers
		careersGroup := adminAPI.Group("/careers")
		{
			careersGroup.GET("", middleware.RequirePermission(model.PermissionCareersRead), handlers.Career.GetAll)
			careersGroup.POST("", middleware.RequirePermission(model.PermissionCareersWrite), handlers.Career.Create)
			careersGroup.PUT("/:id", middleware.RequirePermission(model.PermissionCareersWrite), handlers.Career.Update)
			careersGroup.DELETE("/:id", middleware.RequirePermission(model.PermissionCareersWrite), handlers.Career.Delete)
		}

		// Subjects
		subjectsGroup := adminAPI.Group("/subjects")
		{
			subjectsGroup.GET("", middleware.RequirePermission(model.PermissionSubjectsRead), handlers.Subject.List)
			subjectsGroup.POST("", middleware.RequirePermission(model.PermissionSubjectsWrite), handlers.Subject.Create)
			subjectsGroup.PUT("/:id", middleware.RequirePermission(model.PermissionSubjectsWrite), handlers.Subject.Update)
			subjectsGroup.DELETE("/:id", middleware.RequirePermission(model.PermissionSubjectsWrite), handlers.Subject.Delete)
		}

		// Offerings
		adminAPI.GET("/offerings",
			middleware.RequirePermission(model.PermissionOfferingsRead),
			handlers.Offering.List,
		)
		adminAPI.GET("/offerings/:id",
			middleware.RequirePermission(model.PermissionOfferingsRead),
			handlers.Offering.Get,
		)
		adminAPI.POST("/offerings",
			middleware.RequirePermission(model.PermissionOfferingsWrite),
			handlers.Offering.Create,
		)
		adminAPI.PUT("/offerings/:id",
			middleware.RequirePermission(model.PermissionOfferingsWrite),
			handlers.Offering.Update,
		)
		adminAPI.DELETE("/offerings/:id",
			middleware.RequirePermission(model.PermissionOfferingsWrite),
			handlers.Offering.Delete,
		)

		// Enrollments. Professors without enrollments:read only see their
		// own offerings; the handler checks ownership.
		adminAPI.GET("/offerings/:id/enrollments",
			middleware.RequireAnyPermission(model.PermissionEnrollmentsRead, model.PermissionEnrollmentsReviewOwn),
			handlers.Enrollment.ListByOffering,
		)
		adminAPI.GET("/offerings/:id/enrollments/export",
			middleware.RequirePermission(model.PermissionEnrollmentsExport),
			handlers.Enrollment.Export,
		)
		adminAPI.GET("/offerings/:id/monitor",
			middleware.RequireAnyPermission(model.PermissionEnrollmentsRead, model.PermissionEnrollmentsReviewOwn),
			handlers.Monitor.MonitorOfferingSSE,
		)
		adminAPI.POST("/enrollments/:id/review",
			middleware.RequireAnyPermission(model.PermissionEnrollmentsReviewOwn, model.PermissionEnrollmentsReviewAll),
			handlers.Enrollment.Review,
		)
		adminAPI.DELETE("/enrollments/:id",
			middleware.RequirePermission(model.PermissionEnrollmentsCancelAny),
			handlers.Enrollment.Cancel,
		)

		// Attendance
		adminAPI.GET("/offerings/:id/attendance",
			middleware.RequirePermission(model.PermissionAttendanceRead),
			handlers.Attendance.List,
		)
		adminAPI.PUT("/offerings/:id/attendance",
			middleware.RequireAnyPermission(model.PermissionAttendanceWriteOwn, model.PermissionAttendanceWriteAll),
			handlers.Attendance.Record,
		)

		// Student management
		adminAPI.GET("/students",
			middleware.RequirePermission(model.PermissionStudentsRead),
			handlers.StudentMgmt.ListStudents,
		)
		adminAPI.GET("/students/:id",
			middleware.RequirePermission(model.PermissionStudentsRead),
			handlers.StudentMgmt.GetStudent,
		)
		adminAPI.POST("/students",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.CreateStudent,
		)
		adminAPI.PUT("/students/:id",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.UpdateStudent,
		)
		adminAPI.DELETE("/students/:id",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.DeleteStudent,
		)
		adminAPI.POST("/students/:id/reset-session",
			middleware.RequirePermission(model.PermissionStudentsResetSession),
			handlers.StudentMgmt.ResetStudentSession,
		)

		// Staff
		adminAPI.GET("/staff",
			middleware.RequirePermission(model.PermissionStaffRead),
			handlers.Staff.List,
		)
		adminAPI.POST("/staff",
			middleware.RequirePermission(model.PermissionStaffWrite),
			handlers.Staff.Create,
		)
		adminAPI.PUT("/staff/:id",
			middleware.RequirePermission(model.PermissionStaffWrite),
			handlers.Staff.Update,
		)
		adminAPI.DELETE("/staff/:id",
			middleware.RequirePermission(model.PermissionStaffWrite),
			handlers.Staff.Delete,
		)

		// Roles
		adminAPI.GET("/roles",
			middleware.RequireAnyPermission(model.PermissionRolesRead, model.PermissionStaffRead),
			handlers.Role.ListRoles,
		)
		adminAPI.GET("/roles/permissions",
			middleware.RequirePermission(model.PermissionRolesRead),
			handlers.Role.ListPermissions,
		)
		adminAPI.GET("/roles/:id",
			middleware.RequirePermission(model.PermissionRolesRead),
			handlers.Role.GetRole,
		)
		adminAPI.POST("/roles",
			middleware.RequirePermission(model.PermissionRolesWrite),
			handlers.Role.CreateRole,
		)
		adminAPI.PUT("/roles/:id",
			middleware.RequirePermission(model.PermissionRolesWrite),
			handlers.Role.UpdateRole,
		)
		adminAPI.DELETE("/roles/:id",
			middleware.RequirePermission(model.PermissionRolesWrite),
			handlers.Role.DeleteRole,
		)
	}

	return router
}
