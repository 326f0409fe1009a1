package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/OCAP2/aimsolver/internal/config"
	"github.com/OCAP2/aimsolver/internal/console"
	"github.com/OCAP2/aimsolver/internal/dispatcher"
	"github.com/OCAP2/aimsolver/internal/geo"
	"github.com/OCAP2/aimsolver/internal/handlers"
	"github.com/OCAP2/aimsolver/internal/logging"
	intOtel "github.com/OCAP2/aimsolver/internal/otel"
	"github.com/OCAP2/aimsolver/internal/session"
	"github.com/OCAP2/aimsolver/internal/trajectory"

	"github.com/Graylog2/go-gelf/gelf"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// module defs - Version and BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	AppName string = "aimsolver"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	LogFilePath string
	LogFile     *os.File

	// GraylogWriter is the optional GELF sink
	GraylogWriter *gelf.Writer

	SessionStartTime time.Time = time.Now()
)

// app bundles everything a command stream needs
type app struct {
	session    *session.Context
	service    *handlers.Service
	dispatcher *dispatcher.Dispatcher
	console    *console.Console
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one invocation and returns the process exit code.
func run(args []string) int {
	configDir := cmp.Or(os.Getenv("AIMSOLVER_CONFIG_DIR"), ".")
	sess := session.NewContext()

	setupLogging(configDir, sess)
	defer shutdown()

	a, err := newApp(sess, os.Stdout, isTerminal(os.Stdout))
	if err != nil {
		Logger.Error("Failed to start", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer a.dispatcher.Close()

	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "calc":
			if err := runCalc(a, args[1:]); err != nil {
				a.console.Error(err)
				return 2
			}
			return 0
		case "version":
			if err := runVersion(a); err != nil {
				a.console.Error(err)
				return 2
			}
			return 0
		default:
			a.console.Error(fmt.Errorf("unknown subcommand %q, expected calc or version", args[0]))
			return 2
		}
	}

	if err := runLoop(a, os.Stdin, isTerminal(os.Stdin)); err != nil {
		Logger.Error("Input loop stopped", "error", err)
		return 1
	}
	return 0
}

// newApp builds the solver, handlers and dispatcher from the loaded config.
func newApp(sess *session.Context, out io.Writer, color bool) (*app, error) {
	pc := config.GetPhysicsConfig()
	solver, err := trajectory.NewSolver(trajectory.Constants{
		Gravity:        pc.Gravity,
		LaunchVelocity: pc.LaunchVelocity,
		SweepMin:       pc.SweepMin,
		SweepMax:       pc.SweepMax,
		SweepStep:      pc.SweepStep,
		Tolerance:      pc.Tolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("physics config: %w", err)
	}

	svc := handlers.NewService(handlers.Dependencies{
		Solver:     solver,
		Translator: geo.Translator{ReferenceWidth: config.GetGeometryConfig().ReferenceWidth},
		LogManager: SlogManager,
		MaxHits:    config.GetDisplayConfig().MaxHits,
		AppName:    AppName,
		Version:    Version,
		BuildDate:  BuildDate,
	}, sess)

	d, err := dispatcher.New(logging.NewDispatcherLogger(logger()))
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	svc.Register(d)

	return &app{
		session:    sess,
		service:    svc,
		dispatcher: d,
		console:    console.New(out, color),
	}, nil
}

// setupLogging loads config and routes logs to the session log file, the
// optional OTel provider and the optional Graylog sink.
func setupLogging(configDir string, sess *session.Context) {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(io.Discard, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logs dir: %v\n", err)
	}

	LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
	var err error
	LogFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create/open log file %s: %v\n", LogFilePath, err)
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var logWriter io.Writer
		if LogFile != nil {
			logWriter = LogFile
		}
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    logWriter,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize OTel provider: %v\n", err)
			OTelProvider = nil
		}
	}

	var extra []io.Writer
	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		GraylogWriter, err = gelf.NewWriter(graylogCfg.Address)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to Graylog at %s: %v\n", graylogCfg.Address, err)
			GraylogWriter = nil
		} else {
			GraylogWriter.Facility = AppName
			extra = append(extra, GraylogWriter)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	SlogManager.SetContextProvider(func() []slog.Attr {
		return []slog.Attr{slog.String("mode", sess.Mode().String())}
	})

	var file io.Writer = io.Discard
	if LogFile != nil {
		file = LogFile
	}
	SlogManager.Setup(file, config.GetString("logLevel"), otelLogProvider, extra...)
	Logger = SlogManager.Logger()
	Logger.Info("Starting", "version", Version, "buildDate", BuildDate, "log", LogFilePath)
}

func shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if OTelProvider != nil {
		if counters, err := OTelProvider.Counters(ctx); err != nil {
			Logger.Warn("Failed to collect metrics", "error", err)
		} else {
			Logger.Info("Session metrics",
				"solves", counters["trajectory.solves"],
				"hits", counters["trajectory.hits"],
				"events", counters["dispatcher.events.processed"])
		}
		if err := SlogManager.Flush(ctx); err != nil {
			Logger.Warn("Failed to flush logs", "error", err)
		}
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shut down OTel: %v\n", err)
		}
	}

	if GraylogWriter != nil {
		GraylogWriter.Close()
	}
	if LogFile != nil {
		LogFile.Close()
	}
}

func logger() *slog.Logger {
	if Logger == nil {
		return slog.Default()
	}
	return Logger
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
