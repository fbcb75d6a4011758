package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ArielAmzalak/SenhasGF4/internal/app"
	"github.com/ArielAmzalak/SenhasGF4/internal/clock"
	"github.com/ArielAmzalak/SenhasGF4/internal/config"
	"github.com/ArielAmzalak/SenhasGF4/internal/printing"
	"github.com/ArielAmzalak/SenhasGF4/internal/storage/sheets"
	"github.com/ArielAmzalak/SenhasGF4/internal/storage/workbook"
	"github.com/ArielAmzalak/SenhasGF4/internal/ticket"
	transporthttp "github.com/ArielAmzalak/SenhasGF4/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := buildLogger(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	loadEnvFile(logger)
	cfg := config.FromEnv()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, cleanup, err := buildStore(startupCtx, cfg)
	if err != nil {
		logger.Fatal("store setup failed", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer cleanup()

	registry := app.NewRegistry(store, logger,
		app.WithDirectorySheet(cfg.DirectorySheet),
		app.WithNeighborhoodsSheet(cfg.NeighborhoodsSheet),
	)
	allocator := app.NewAllocator(store, logger)
	registrations := app.NewRegistrationService(registry, allocator, clock.NewSystem(), logger,
		app.WithTimezone(cfg.Timezone),
	)
	renderer := ticket.NewRenderer(cfg.LogoPath, logger)
	printer := printing.NewClient(cfg.PrintServerURL, cfg.PrintToken, logger)
	if !printer.Enabled() {
		logger.Warn("print server not configured, tickets will be download-only")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/areas", transporthttp.HandleListAreas(registry))
	mux.Handle("/neighborhoods", transporthttp.HandleListNeighborhoods(registry))
	mux.Handle("/registrations", transporthttp.HandleCreateRegistration(registrations, renderer, printer, logger))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("listening",
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.StoreBackend))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func buildStore(ctx context.Context, cfg config.Config) (app.SheetStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendSheets:
		if cfg.SpreadsheetID == "" {
			return nil, nil, fmt.Errorf("SPREADSHEET_ID is required for the sheets backend")
		}
		svc, err := sheets.NewService(ctx, sheets.Credentials{
			ServiceAccountJSON: cfg.ServiceAccountJSON,
			ClientSecretJSON:   cfg.ClientSecretJSON,
			TokenFile:          cfg.OAuthTokenFile,
		})
		if err != nil {
			return nil, nil, err
		}
		return sheets.NewStore(svc, cfg.SpreadsheetID), func() {}, nil

	case config.BackendWorkbook:
		store, err := workbook.NewStore(cfg.WorkbookPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func buildLogger(level string) *zap.Logger {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	}

	conf := zap.NewProductionConfig()
	conf.Level = zap.NewAtomicLevelAt(zapLevel)
	conf.EncoderConfig.TimeKey = "timestamp"
	conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	conf.OutputPaths = []string{"stdout"}
	conf.ErrorOutputPaths = []string{"stderr"}

	logger, err := conf.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func loadEnvFile(logger *zap.Logger) {
	path, err := findEnvFile()
	if err != nil {
		logger.Warn("failed to locate .env", zap.Error(err))
		return
	}
	if path == "" {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Warn("failed to open env file", zap.String("path", path), zap.Error(err))
		return
	}
	defer file.Close()

	if err := parseEnvFile(logger, file); err != nil {
		logger.Warn("failed to load env file", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("loaded env file", zap.String("path", path))
}

func findEnvFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

func parseEnvFile(logger *zap.Logger, file *os.File) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = trimQuotes(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			logger.Warn("failed to set env var from file", zap.String("key", key))
		}
	}
	return scanner.Err()
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
