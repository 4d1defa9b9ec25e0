package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultPortraitsSubDir  = "portraits"
	DefaultEncodingsSubDir  = "encodings"
	DefaultLegacyDBFileName = "attendance_legacy.db"
)

const (
	defaultDedupWindowSeconds     = 60
	defaultScanDurationSeconds    = 5
	defaultResultCacheTTLSeconds  = 30
	defaultResultCacheMaxEntries  = 1024
	defaultAttendanceQueueSize    = 200
	defaultNumAttendanceWorkers   = 4
	defaultCompareToleranceMins   = 6
	defaultSimilarityThreshold    = 0.5
	defaultPortraitMaxSize        = 640
	defaultTokenLifetimeHours     = 12
	defaultListenAddr             = ":8080"
)

type Config struct {
	// HTTP listen address
	ListenAddr string

	// ledger database path (GORM / sqlite)
	DatabasePath string

	// legacy attendance database path (raw sqlite)
	LegacyDatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for enrollment assets
	PortraitsPath    string // full-calculated path for enrollment portraits
	EncodingsPath    string // full-calculated path for persisted face encodings

	// attendance engine settings
	DedupWindowSeconds      int
	ScanDurationSeconds     int
	ResultCacheTTLSeconds   int
	ResultCacheMaxEntries   int
	CompareToleranceMinutes int

	// worker settings
	AttendanceQueueSize   int
	NumAttendanceWorkers  int

	// face detection model paths (DNN)
	FaceDNNNetConfigPath string
	FaceDNNNetModelPath  string

	// face recognition (embedding) model
	RecognitionModelPath string

	// cosine similarity cutoff for a recognition match
	SimilarityThreshold float64

	// portrait normalization settings
	PortraitMaxSize int

	// camera device indices for the kiosk scan loop
	CameraIndex int

	// auth settings
	JWTSecret          string
	TokenLifetimeHours int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %g. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "attendance.db")

	legacyDBPath := getEnvOrDefault("LEGACY_DATABASE_PATH", DefaultLegacyDBFileName)

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	portraitSubDir := getEnvOrDefault("PORTRAITS_SUBDIR", DefaultPortraitsSubDir)
	absPortraitsPath := filepath.Join(absMediaStorage, portraitSubDir)

	encodingSubDir := getEnvOrDefault("ENCODINGS_SUBDIR", DefaultEncodingsSubDir)
	absEncodingsPath := filepath.Join(absMediaStorage, encodingSubDir)

	dedupWindow := getEnvIntOrDefault("DEDUP_WINDOW_SECONDS", defaultDedupWindowSeconds)
	scanDuration := getEnvIntOrDefault("SCAN_DURATION_SECONDS", defaultScanDurationSeconds)
	cacheTTL := getEnvIntOrDefault("RESULT_CACHE_TTL_SECONDS", defaultResultCacheTTLSeconds)
	cacheMax := getEnvIntOrDefault("RESULT_CACHE_MAX_ENTRIES", defaultResultCacheMaxEntries)
	compareTolerance := getEnvIntOrDefault("COMPARE_TOLERANCE_MINUTES", defaultCompareToleranceMins)

	queueSize := getEnvIntOrDefault("ATTENDANCE_QUEUE_SIZE", defaultAttendanceQueueSize)
	numWorkers := getEnvIntOrDefault("NUM_ATTENDANCE_WORKERS", defaultNumAttendanceWorkers)

	faceDNNConfig := getEnvOrDefault("FACE_DNN_CONFIG_PATH", "./models/deploy.prototxt.txt")
	faceDNNModel := getEnvOrDefault("FACE_DNN_MODEL_PATH", "./models/res10_300x300_ssd_iter_140000_fp16.caffemodel")
	recognitionModel := getEnvOrDefault("RECOGNITION_MODEL_PATH", "./models/nn4.small2.v1.t7")

	similarity := getEnvFloatOrDefault("SIMILARITY_THRESHOLD", defaultSimilarityThreshold)
	portraitMaxSize := getEnvIntOrDefault("PORTRAIT_MAX_SIZE", defaultPortraitMaxSize)

	cameraIndex := getEnvIntOrDefault("CAMERA_INDEX", 1) - 1 // env is 1-based for operators

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	tokenLifetime := getEnvIntOrDefault("TOKEN_LIFETIME_HOURS", defaultTokenLifetimeHours)

	listenAddr := getEnvOrDefault("LISTEN_ADDR", defaultListenAddr)

	cfg := Config{
		ListenAddr:              listenAddr,
		DatabasePath:            dbPath,
		LegacyDatabasePath:      legacyDBPath,
		MediaStoragePath:        absMediaStorage,
		PortraitsPath:           absPortraitsPath,
		EncodingsPath:           absEncodingsPath,
		DedupWindowSeconds:      dedupWindow,
		ScanDurationSeconds:     scanDuration,
		ResultCacheTTLSeconds:   cacheTTL,
		ResultCacheMaxEntries:   cacheMax,
		CompareToleranceMinutes: compareTolerance,
		AttendanceQueueSize:     queueSize,
		NumAttendanceWorkers:    numWorkers,
		FaceDNNNetConfigPath:    faceDNNConfig,
		FaceDNNNetModelPath:     faceDNNModel,
		RecognitionModelPath:    recognitionModel,
		SimilarityThreshold:     similarity,
		PortraitMaxSize:         portraitMaxSize,
		CameraIndex:             cameraIndex,
		JWTSecret:               jwtSecret,
		TokenLifetimeHours:      tokenLifetime,
	}

	return cfg, nil
}
