package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/samueltrindadern/crmclinica/internal/adapters/lis"
	"github.com/samueltrindadern/crmclinica/internal/alert"
	"github.com/samueltrindadern/crmclinica/internal/message"
	"github.com/samueltrindadern/crmclinica/internal/notification"
	"github.com/samueltrindadern/crmclinica/internal/patient"
	"github.com/samueltrindadern/crmclinica/internal/settings"
	"github.com/samueltrindadern/crmclinica/internal/shared/auth"
	"github.com/samueltrindadern/crmclinica/internal/shared/config"
	"github.com/samueltrindadern/crmclinica/internal/shared/database"
	"github.com/samueltrindadern/crmclinica/internal/shared/events"
	"github.com/samueltrindadern/crmclinica/internal/shared/logging"
	"github.com/samueltrindadern/crmclinica/internal/shared/metrics"
	secmiddleware "github.com/samueltrindadern/crmclinica/internal/shared/middleware"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// App holds all application dependencies
type App struct {
	Config *config.Config
	DB     *database.DB
	Bus    *events.Bus
}

func main() {
	ctx := context.Background()

	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging)

	app := &App{Config: cfg}

	// Initialize database (optional - fall back to in-memory stores)
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Warn().Err(err).Msg("Database not available, running in limited mode with in-memory stores")
	} else {
		app.DB = db
		defer db.Close()

		if err := database.Migrate(ctx, db.Pool); err != nil {
			log.Warn().Err(err).Msg("Migration failed")
		}
	}

	// Initialize event bus with KurrentDB (optional - skip if not available)
	bus, err := events.NewBus(ctx, cfg.KurrentDB)
	if err != nil {
		log.Warn().Err(err).Msg("KurrentDB not available, running without event streaming")
	} else {
		app.Bus = bus
		defer bus.Close()
		log.Info().Msg("KurrentDB event bus initialized")
	}

	// Repositories: Postgres-backed when a database is up, otherwise
	// in-memory with demo data
	var (
		patientRepo  patient.Repository
		alertRepo    alert.Repository
		messageRepo  message.Repository
		settingsRepo settings.Repository
	)

	if app.DB != nil {
		patientRepo = patient.NewPostgresRepository(app.DB.Pool)
		alertRepo = alert.NewPostgresRepository(app.DB.Pool)
		messageRepo = message.NewPostgresRepository(app.DB.Pool)
		settingsRepo = settings.NewPostgresRepository(app.DB.Pool)
	} else {
		memPatients := patient.NewMemoryRepository()
		memSettings := settings.NewMemoryRepository()
		seedDemoData(ctx, memPatients, memSettings)

		patientRepo = memPatients
		alertRepo = alert.NewMemoryRepository()
		messageRepo = message.NewMemoryRepository()
		settingsRepo = memSettings
	}

	// Notification channels
	whatsappChannel := notification.NewWhatsAppChannel()

	var emailChannel notification.Channel
	if smtp, err := notification.NewSMTPChannel(cfg.SMTP); err != nil {
		log.Warn().Err(err).Msg("SMTP not configured, e-mail delivery goes to the log")
		emailChannel = notification.NewLogChannel("email")
	} else {
		emailChannel = smtp
	}

	// Check-up scanner
	scanner := alert.NewScanner(patientRepo, alertRepo, app.Bus, alert.ScannerConfig{
		Interval:       cfg.Scheduler.ScanInterval,
		ReminderWindow: cfg.Scheduler.ReminderWindow,
	})
	go scanner.Start(ctx)
	defer scanner.Stop()

	// Alert dispatcher
	dispatcher := alert.NewDispatcher(
		alertRepo, patientRepo, settingsRepo, messageRepo,
		whatsappChannel, emailChannel, app.Bus,
	)

	// Nightly LIS import
	if cfg.LIS.Enabled {
		lisAdapter, err := lis.New(cfg.LIS)
		if err != nil {
			log.Warn().Err(err).Msg("LIS not available, skipping exam result import")
		} else {
			defer lisAdapter.Close()

			importer := lis.NewImporter(lisAdapter, patientRepo)
			c := cron.New()
			if _, err := c.AddFunc(cfg.LIS.SyncSchedule, func() {
				if err := importer.RunOnce(ctx); err != nil {
					log.Error().Err(err).Msg("LIS import failed")
				}
			}); err != nil {
				log.Warn().Err(err).Str("schedule", cfg.LIS.SyncSchedule).Msg("Invalid LIS sync schedule")
			} else {
				c.Start()
				defer c.Stop()
				log.Info().Str("schedule", cfg.LIS.SyncSchedule).Msg("LIS import scheduled")
			}
		}
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.InputSanitizer)
	r.Use(logging.RequestLogger)
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler(app))
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	// API info
	r.Get("/", infoHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Server.Env == "production" {
			r.Use(auth.Middleware(cfg.Auth))
		}
		r.Use(secmiddleware.NewIPRateLimiter(20, 40).Middleware)

		patientHandler := patient.NewHandler(patientRepo, app.Bus)
		r.Mount("/patients", patientHandler.Routes())

		alertHandler := alert.NewHandler(alertRepo, patientRepo, dispatcher, app.Bus)
		r.Mount("/alerts", alertHandler.Routes())

		messageHandler := message.NewHandler(messageRepo)
		r.Mount("/messages", messageHandler.Routes())

		settingsHandler := settings.NewHandler(settingsRepo)
		r.Mount("/settings", settingsHandler.Routes())
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
		close(done)
	}()

	log.Info().
		Str("env", cfg.Server.Env).
		Int("port", cfg.Server.Port).
		Dur("scan_interval", cfg.Scheduler.ScanInterval).
		Bool("database", app.DB != nil).
		Bool("kurrentdb", app.Bus != nil).
		Bool("lis", cfg.LIS.Enabled).
		Msg("CRM Clínica started")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server error")
	}

	<-done
	log.Info().Msg("Server stopped")
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "CRM Clínica",
		"version": "0.1.0",
		"docs":    "/api/v1",
	})
}

func healthHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if app.DB != nil {
			if err := app.DB.Health(r.Context()); err != nil {
				checks["database"] = "not ready: " + err.Error()
			} else {
				checks["database"] = "ready"
			}
		} else {
			checks["database"] = "not configured"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(); err != nil {
				checks["kurrentdb"] = "not ready: " + err.Error()
			} else {
				checks["kurrentdb"] = "ready"
			}
		} else {
			checks["kurrentdb"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// seedDemoData loads the demo clinic used in limited mode
func seedDemoData(ctx context.Context, patients *patient.MemoryRepository, settingsRepo *settings.MemoryRepository) {
	clinicID := auth.DemoClinicID

	_ = settingsRepo.Upsert(ctx, &settings.ClinicSettings{
		ClinicID:         clinicID,
		Name:             "Clínica Saúde Total",
		CNPJ:             "12.345.678/0001-90",
		Email:            "contato@saudetotal.com.br",
		Phone:            "(11) 3456-7890",
		WhatsAppNumber:   "(11) 98765-4321",
		Address:          "Av. Paulista, 1000",
		City:             "São Paulo",
		State:            "SP",
		ZipCode:          "01310-100",
		EmailSignature:   "Equipe Clínica Saúde Total",
		WhatsAppTemplate: "Olá {nome}, é hora do seu check-up! Entre em contato para agendar seu exame de {exame}.",
		EmailTemplate:    "Prezado(a) {nome}, lembramos que está na hora do seu exame de {exame}. Agende sua consulta.",
	})

	demoPatients := []patient.Patient{
		{
			Name:         "Maria Silva",
			CPF:          "123.456.789-00",
			Phone:        "(11) 99876-5432",
			Email:        "maria.silva@email.com",
			ExamType:     "Ginecologia",
			LastExamDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			RiskProfile:  patient.RiskHigh,
		},
		{
			Name:         "João Santos",
			CPF:          "987.654.321-00",
			Phone:        "(11) 98765-1234",
			Email:        "joao.santos@email.com",
			ExamType:     "Cardiologia",
			LastExamDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			RiskProfile:  patient.RiskModerate,
		},
		{
			Name:         "Carlos Oliveira",
			CPF:          "456.789.123-00",
			Phone:        "(11) 97654-3210",
			Email:        "carlos.oliveira@email.com",
			ExamType:     "Urologia",
			LastExamDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			RiskProfile:  patient.RiskLow,
		},
	}

	for i := range demoPatients {
		p := &demoPatients[i]
		p.ID = types.NewID()
		p.ClinicID = clinicID
		p.Status = patient.StatusActive
		p.NextCheckupDate = patient.NextCheckupDate(p.LastExamDate, p.RiskProfile)

		if err := patients.Create(ctx, p); err != nil {
			log.Warn().Err(err).Str("patient", p.Name).Msg("Failed to seed demo patient")
		}
	}

	log.Info().Int("patients", len(demoPatients)).Msg("Demo data loaded")
}
