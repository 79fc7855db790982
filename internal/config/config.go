package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/nativebridge/internal/adapter"
	"github.com/atomicstack/nativebridge/internal/app"
	"github.com/atomicstack/nativebridge/internal/eventbridge"
	"github.com/atomicstack/nativebridge/internal/host"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envScript    = "NATIVEBRIDGE_SCRIPT"
	envHost      = "NATIVEBRIDGE_HOST"
	envToolkit   = "NATIVEBRIDGE_TOOLKIT"
	envTitle     = "NATIVEBRIDGE_TITLE"
	envWidth     = "NATIVEBRIDGE_WIDTH"
	envHeight    = "NATIVEBRIDGE_HEIGHT"
	envCoalesce  = "NATIVEBRIDGE_COALESCE"
	envPoll      = "NATIVEBRIDGE_POLL"
	envQueue     = "NATIVEBRIDGE_QUEUE"
	envBenchmark = "NATIVEBRIDGE_BENCHMARK"
	envTrace     = "NATIVEBRIDGE_TRACE"
	envLogFile   = "NATIVEBRIDGE_LOG_FILE"
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("nativebridge", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	script := fs.String("script", envOrDefault(env, envScript, ""), "page script (.js, or .html with the webview host)")
	hostName := fs.String("host", envOrDefault(env, envHost, app.HostGoja), "script host: goja or webview")
	toolkit := fs.String("toolkit", envOrDefault(env, envToolkit, ""), "native toolkit: term or headless (default term, headless in benchmark mode)")
	title := fs.String("title", envOrDefault(env, envTitle, "nativebridge"), "window title")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "window width (cells for term, pixels for webview; 0 uses the default)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "window height (rows for term, pixels for webview; 0 uses the default)")
	coalesce := fs.Duration("coalesce", envOrDuration(env, envCoalesce, adapter.DefaultCoalesceWindow), "window in which widget reloads are merged")
	poll := fs.Duration("poll", envOrDuration(env, envPoll, host.DefaultPollInterval), "interval at which the page polls for queued events (0 disables)")
	queue := fs.Int("queue", envOrInt(env, envQueue, eventbridge.DefaultQueueLimit), "maximum number of queued polled events")
	benchmark := fs.Bool("benchmark", envOrBool(env, envBenchmark, false), "print ready once the window is up and exit")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if *script == "" && fs.NArg() > 0 {
		*script = fs.Arg(0)
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}

	cfg := Config{
		App: app.Config{
			Script:     *script,
			Host:       *hostName,
			Toolkit:    *toolkit,
			Title:      *title,
			Width:      *width,
			Height:     *height,
			Coalesce:   *coalesce,
			Poll:       *poll,
			QueueLimit: *queue,
			Benchmark:  *benchmark,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"script":    *script,
			"host":      *hostName,
			"toolkit":   *toolkit,
			"title":     *title,
			"width":     strconv.Itoa(*width),
			"height":    strconv.Itoa(*height),
			"coalesce":  coalesce.String(),
			"poll":      poll.String(),
			"queue":     strconv.Itoa(*queue),
			"benchmark": strconv.FormatBool(*benchmark),
			"trace":     strconv.FormatBool(*trace),
			"logFile":   *logFile,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects option combinations the application cannot run.
func Validate(cfg Config) error {
	switch cfg.App.Host {
	case app.HostGoja:
	case app.HostWebview:
		if !host.WebviewAvailable {
			return fmt.Errorf("host %q needs a build with -tags webview", cfg.App.Host)
		}
	default:
		return fmt.Errorf("unknown host %q (want goja or webview)", cfg.App.Host)
	}
	switch cfg.App.Toolkit {
	case "", app.ToolkitTerm, app.ToolkitHeadless:
	default:
		return fmt.Errorf("unknown toolkit %q (want term or headless)", cfg.App.Toolkit)
	}
	if cfg.App.Coalesce <= 0 {
		return fmt.Errorf("coalesce must be > 0 (got %s)", cfg.App.Coalesce)
	}
	if cfg.App.Poll < 0 {
		return fmt.Errorf("poll must be >= 0 (got %s)", cfg.App.Poll)
	}
	if cfg.App.QueueLimit <= 0 {
		return fmt.Errorf("queue must be > 0 (got %d)", cfg.App.QueueLimit)
	}
	return nil
}
