package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ciceromayk/parametrico/internal/calc"
	"github.com/ciceromayk/parametrico/internal/config"
	"github.com/ciceromayk/parametrico/internal/server"
	"github.com/ciceromayk/parametrico/internal/session"
	"github.com/ciceromayk/parametrico/internal/store"
	"github.com/ciceromayk/parametrico/pkg/constants"
	"github.com/ciceromayk/parametrico/pkg/output"
	"github.com/ciceromayk/parametrico/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

// mergeLogging lets the server config override the logging section field by field.
func mergeLogging(base, override config.LoggingConfig) config.LoggingConfig {
	if override.Level != "" {
		base.Level = override.Level
	}
	if override.Format != "" {
		base.Format = override.Format
	}
	if override.OutputFile != "" {
		base.OutputFile = override.OutputFile
	}
	return base
}

// resolveConfigPath returns "" when the default config file is absent so
// that the built-in defaults apply. An explicit path must exist.
func resolveConfigPath(path string) string {
	if path != constants.DefaultConfigFile {
		return path
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ""
	}
	return path
}

func fatal(msg string, err error) {
	fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": %q, \"error\": %q}\n", msg, fmt.Sprint(err))
	os.Exit(1)
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to HTTP server configuration file")
	envFile := flag.String("env", ".env", "path to an optional .env file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	projectID := flag.Int("project", 0, "project id for the report command")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [serve|list|report]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "serve"
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		fatal("failed to load env file", err)
	}

	conf, err := config.LoadConfiguration(resolveConfigPath(*configLocation))
	if err != nil {
		fatal(fmt.Sprintf("failed to load configuration at %s", *configLocation), err)
	}

	var serverConf *server.Config
	if command == "serve" {
		serverConf, err = server.LoadConfig(*serverConfigLocation)
		if err != nil {
			fatal(fmt.Sprintf("failed to load server configuration at %s", *serverConfigLocation), err)
		}
		conf.Logging = mergeLogging(conf.Logging, serverConf.Logging)
	}

	warnings := conf.ValidateConfiguration()

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fatal("failed to initialize logger", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	projects := store.New(conf.Storage.Projects, logger)

	switch command {
	case "serve":
		if err := serve(logger, conf, serverConf, projects); err != nil {
			logger.Fatal("server stopped with error",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case "list":
		if err := list(os.Stdout, projects); err != nil {
			logger.Fatal("failed to list projects",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case "report":
		outputFormat := conf.Output.Format
		if *outputFormatFlag != "" {
			outputFormat = *outputFormatFlag
		}
		if outputFormat == "" {
			outputFormat = constants.OutputFormatPretty
		}
		if err := validation.ValidateOutputFormat(outputFormat); err != nil {
			logger.Fatal(err.Error(),
				zap.String("op", "main"),
			)
		}
		if err := report(os.Stdout, projects, *projectID, outputFormat); err != nil {
			logger.Fatal("failed to build report",
				zap.String("op", "main"),
				zap.Int("project", *projectID),
				zap.Error(err),
			)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func serve(logger *zap.Logger, conf *config.Configuration, serverConf *server.Config, projects *store.Store) error {
	stages := store.NewArchive(store.CategoryStages, conf.Storage.StageArchive, logger)
	indirect := store.NewArchive(store.CategoryIndirect, conf.Storage.IndirectArchive, logger)
	for _, initer := range []interface{ Init() error }{projects, stages, indirect} {
		if err := initer.Init(); err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
	}

	manager := session.NewManager(projects, stages, indirect, conf.ProjectDefaults(), logger)

	srv := &http.Server{
		Addr:              serverConf.Address,
		Handler:           server.NewHandler(manager, serverConf, logger, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main"),
			zap.String("address", serverConf.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.String("op", "main"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func list(w io.Writer, projects *store.Store) error {
	summaries, err := projects.List()
	if err != nil {
		return err
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Name, s.CreatedAt.Format(constants.TimestampLayout))
	}
	return nil
}

func report(w io.Writer, projects *store.Store, id int, outputFormat string) error {
	p, ok, err := projects.Load(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("project %d not found", id)
	}

	summary, err := calc.Project(p)
	if err != nil {
		return err
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(w, p.Name, summary)
	case constants.OutputFormatCSV:
		output.CsvFormat(w, summary)
	}
	return nil
}
