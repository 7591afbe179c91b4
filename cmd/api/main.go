package main

import (
	"net/http"
	"os"

	"clinicdesk/cmd/internal/domain/sqlite"
	"clinicdesk/cmd/internal/domain/sqlite/repository"
	appmw "clinicdesk/cmd/internal/middleware"
	"clinicdesk/cmd/internal/routes"
	"clinicdesk/cmd/internal/service"
	"clinicdesk/cmd/internal/session"
	"clinicdesk/cmd/internal/utils/validators"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("SESSION_SECRET must be set")
	}

	validate := validator.New()
	registerValidators(validate)

	// Init SQLite
	db, err := sqlite.Init(envOr("DB_PATH", "./database.db"))
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	sessions := session.NewManager(sessionRepo, secret)

	// Getting services
	authService := service.NewAuthService(userRepo, validate)
	patientService := service.NewPatientService(patientRepo, apptRepo, validate)
	apptService := service.NewAppointmentService(apptRepo, patientRepo, validate)
	reportService := service.NewReportService(reportRepo)
	settingsService := service.NewSettingsService(userRepo, patientRepo, apptRepo, validate)

	// Getting routes
	authRoutes := routes.NewAuthDefault(authService, sessions)
	patientRoutes := routes.NewPatientDefault(patientService, sessions)
	apptRoutes := routes.NewAppointmentDefault(apptService, sessions)
	reportRoutes := routes.NewReportDefault(reportService, sessions)
	settingsRoutes := routes.NewSettingsDefault(settingsService, sessions)

	e := echo.New()
	e.Use(middleware.CORS())

	e.GET("/", func(c echo.Context) error {
		if cookie, err := c.Cookie(session.CookieName); err == nil {
			if sess, _ := sessions.Resolve(cookie.Value); sess != nil {
				return c.Redirect(http.StatusSeeOther, "/dashboard")
			}
		}
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	})

	// Auth, with credential POSTs rate limited per client IP
	limiter := appmw.RateLimit(rate.Limit(1), 5)
	e.GET("/auth/register", authRoutes.GetRegister)
	e.POST("/auth/register", authRoutes.Register, limiter)
	e.GET("/auth/login", authRoutes.GetLogin)
	e.POST("/auth/login", authRoutes.Login, limiter)

	// Everything below requires a live session
	app := e.Group("", appmw.RequireSession(sessions))
	app.GET("/auth/logout", authRoutes.Logout)

	app.GET("/dashboard", reportRoutes.GetDashboard)
	app.GET("/reports", reportRoutes.GetReports)

	// Patients
	app.GET("/patients", patientRoutes.GetPatients)
	app.GET("/patients/add", patientRoutes.GetAddPatient)
	app.POST("/patients/add", patientRoutes.AddPatient)
	app.GET("/patients/edit/:id", patientRoutes.GetEditPatient)
	app.POST("/patients/edit/:id", patientRoutes.EditPatient)
	app.POST("/patients/delete/:id", patientRoutes.DeletePatient)
	app.GET("/patients/:id", patientRoutes.GetPatientDetails)

	// Appointments
	app.GET("/appointments", apptRoutes.GetAppointments)
	app.GET("/appointments/add", apptRoutes.GetAddAppointment)
	app.POST("/appointments/add", apptRoutes.AddAppointment)
	app.GET("/appointments/edit/:id", apptRoutes.GetEditAppointment)
	app.POST("/appointments/edit/:id", apptRoutes.EditAppointment)
	app.POST("/appointments/delete/:id", apptRoutes.DeleteAppointment)
	app.POST("/appointments/complete/:id", apptRoutes.CompleteAppointment)
	app.POST("/appointments/cancel/:id", apptRoutes.CancelAppointment)

	// Settings
	app.GET("/settings", settingsRoutes.GetSettings)
	app.POST("/settings/password", settingsRoutes.ChangePassword)
	app.POST("/settings/info", settingsRoutes.UpdateInfo)
	app.GET("/settings/export", settingsRoutes.ExportData)
	app.POST("/settings/factory-reset", settingsRoutes.FactoryReset)
	app.POST("/settings/delete-account", settingsRoutes.DeleteAccount)

	if err := e.Start(":" + envOr("PORT", "6060")); err != nil {
		e.Logger.Fatal(err)
	}
}

func registerValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("dateonly", validators.IsDateOnly)
	_ = validate.RegisterValidation("datetimelocal", validators.IsDateTimeLocal)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
