package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/facekiosk/attendancebackend/attendance"
	"github.com/facekiosk/attendancebackend/config"
	"github.com/facekiosk/attendancebackend/database"
	"github.com/facekiosk/attendancebackend/handlers"
	"github.com/facekiosk/attendancebackend/media"
	"github.com/facekiosk/attendancebackend/models"
	"github.com/facekiosk/attendancebackend/realtime"
	"github.com/facekiosk/attendancebackend/repository"
	"github.com/facekiosk/attendancebackend/services"
	"github.com/facekiosk/attendancebackend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.PortraitsPath, cfg.EncodingsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	gormDB, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize ledger database: %v", err)
	}
	if err := database.AutoMigrateModels(gormDB); err != nil {
		log.Fatalf("FATAL: Failed to migrate ledger database: %v", err)
	}

	legacyDB, err := database.InitDB(cfg.LegacyDatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize legacy attendance database: %v", err)
	}
	defer legacyDB.Close()

	tenantRepo := repository.NewTenantRepository(gormDB)
	employeeRepo := repository.NewEmployeeRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	timeEntryRepo := repository.NewTimeEntryRepository(gormDB)
	legacyRepo := repository.NewLegacyAttendanceRepository(legacyDB)

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypePortrait: filepath.Base(cfg.PortraitsPath),
		media.AssetTypeEncoding: filepath.Base(cfg.EncodingsPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}
	mediaProcessor := media.NewProcessor(mediaStore)

	detector := media.NewDNNFaceDetector(cfg.FaceDNNNetConfigPath, cfg.FaceDNNNetModelPath)
	defer detector.Close()
	recognizer := media.NewFaceRecognitionModel(cfg.RecognitionModelPath)
	defer recognizer.Close()

	encodings, err := media.NewEncodingStore(cfg.EncodingsPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize encoding store: %v", err)
	}
	if err := encodings.Load(); err != nil {
		log.Fatalf("FATAL: Failed to load persisted encodings: %v", err)
	}

	// a missing camera is not fatal: dashboard-only deployments have none
	camera, err := media.OpenCamera(cfg.CameraIndex)
	if err != nil {
		log.Printf("Warning: camera unavailable, scan sessions disabled: %v", err)
	} else {
		defer camera.Close()
	}

	recorder := attendance.NewRecorder(timeEntryRepo, legacyRepo,
		time.Duration(cfg.DedupWindowSeconds)*time.Second)
	// sweep deduplication markers left behind by previous days' scans
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			recorder.PruneDedupBefore(time.Now().Add(-24 * time.Hour))
		}
	}()
	reconciler := attendance.NewReconciler(timeEntryRepo, legacyRepo)
	reconciler.Tolerance = time.Duration(cfg.CompareToleranceMinutes) * time.Minute
	results := attendance.NewResultCache(
		time.Duration(cfg.ResultCacheTTLSeconds)*time.Second, cfg.ResultCacheMaxEntries)

	hub := realtime.NewHub()
	go hub.Run()

	log.Printf("Initializing attendance worker pool (Workers: %d, Queue Size: %d)...",
		cfg.NumAttendanceWorkers, cfg.AttendanceQueueSize)
	processor := workers.NewAttendanceProcessor(recorder, results, hub,
		cfg.AttendanceQueueSize, cfg.NumAttendanceWorkers)
	defer processor.Stop()

	enrollment := services.NewEnrollmentService(mediaStore, mediaProcessor, detector, recognizer,
		encodings, employeeRepo, cfg.PortraitMaxSize)
	scanService := services.NewScanService(camera, detector, recognizer, encodings, processor,
		employeeRepo, cfg.SimilarityThreshold,
		time.Duration(cfg.ScanDurationSeconds)*time.Second)

	log.Printf("Using ledger database: %s", cfg.DatabasePath)
	log.Printf("Using legacy attendance database: %s", cfg.LegacyDatabasePath)
	log.Printf("Deduplication window: %ds, scan duration: %ds",
		cfg.DedupWindowSeconds, cfg.ScanDurationSeconds)

	authHandler := handlers.NewAuthHandler(userRepo, tenantRepo, employeeRepo,
		[]byte(cfg.JWTSecret), time.Duration(cfg.TokenLifetimeHours)*time.Hour)
	tenantHandler := handlers.NewTenantHandler(tenantRepo, userRepo)
	employeeHandler := handlers.NewEmployeeHandler(employeeRepo, enrollment, mediaStore)
	attendanceHandler := handlers.NewAttendanceHandler(timeEntryRepo, timeEntryRepo, legacyRepo,
		reconciler, recorder)
	scanHandler := handlers.NewScanHandler(scanService, results, tenantRepo, hub)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	requireAuth := handlers.AuthMiddleware(userRepo, []byte(cfg.JWTSecret))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(requireAuth).Get("/me", authHandler.CurrentUser)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Post("/", tenantHandler.CreateTenant)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(handlers.RequireRole(models.RoleAdmin))
				r.Get("/", tenantHandler.ListTenants)
				r.Route("/{tenant_id}", func(r chi.Router) {
					r.Get("/", tenantHandler.GetTenant)
					r.Put("/", tenantHandler.UpdateTenant)
				})
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(handlers.RequireRole(models.RoleAdmin)).Post("/", employeeHandler.CreateEmployee)
			r.Get("/", employeeHandler.ListEmployees)
			r.With(handlers.RequireRole(models.RoleAdmin)).Get("/portraits", employeeHandler.ListPortraits)
			r.Route("/{employee_id}", func(r chi.Router) {
				r.Get("/", employeeHandler.GetEmployee)
				r.Get("/portrait", employeeHandler.GetPortrait)
				r.Group(func(r chi.Router) {
					r.Use(handlers.RequireRole(models.RoleAdmin))
					r.Put("/", employeeHandler.UpdateEmployee)
					r.Delete("/", employeeHandler.DeleteEmployee)
					r.Put("/portrait", employeeHandler.UploadPortrait)
					r.Post("/encoding", employeeHandler.RebuildEncoding)
				})
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/summary", attendanceHandler.DailySummary)
			r.Get("/status", attendanceHandler.EmployeeStatus)
			r.Get("/ledger", attendanceHandler.LedgerForDay)
			r.Get("/history", attendanceHandler.EmployeeHistory)
			r.Group(func(r chi.Router) {
				r.Use(handlers.RequireRole(models.RoleAdmin, models.RoleTeacher))
				r.Get("/legacy", attendanceHandler.QueryLegacy)
				r.Get("/legacy/export", attendanceHandler.ExportLegacyCSV)
				r.Get("/comparison", attendanceHandler.DailyComparison)
				r.Get("/comparison/employee", attendanceHandler.EmployeeComparison)
			})
		})
	})

	// kiosk routes stream and hold connections open, so no timeout here
	r.Route("/kiosk/{session_code}", func(r chi.Router) {
		r.Get("/scan", scanHandler.StreamScan)
		r.Get("/status/{reg_id}", scanHandler.ScanStatus)
		r.Get("/monitor", scanHandler.Monitor)
	})

	fmt.Printf("Server starting on %s\n", cfg.ListenAddr)
	log.Printf("Server listening on %s", cfg.ListenAddr)
	server := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// no write timeout: the kiosk scan stream outlives any fixed limit
		IdleTimeout: 120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
