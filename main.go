package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atomicstack/nativebridge/internal/app"
	"github.com/atomicstack/nativebridge/internal/config"
	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"golang.org/x/term"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	events.App.Start(startupTracePayload(runtimeCfg, terminalOutput()))

	if err := app.Run(runtimeCfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// terminal describes the descriptor a term toolkit window would draw on.
type terminal struct {
	Stream string `json:"stream,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// terminalOutput reports the first of stdout and stderr that is a terminal.
// A zero Stream means no terminal is attached.
func terminalOutput() terminal {
	for _, s := range []struct {
		name string
		f    *os.File
	}{{"stdout", os.Stdout}, {"stderr", os.Stderr}} {
		fd := int(s.f.Fd())
		if !term.IsTerminal(fd) {
			continue
		}
		t := terminal{Stream: s.name}
		if w, h, err := term.GetSize(fd); err == nil {
			t.Width, t.Height = w, h
		} else {
			t.Error = err.Error()
		}
		return t
	}
	return terminal{}
}

// startupTracePayload describes the page and window about to be opened.
func startupTracePayload(cfg config.Config, tty terminal) map[string]interface{} {
	ac := cfg.App
	script := map[string]interface{}{"path": ac.Script}
	if ac.Script == "" {
		script["source"] = "none"
	} else if abs, err := filepath.Abs(ac.Script); err == nil {
		script["path"] = abs
		if st, err := os.Stat(abs); err == nil {
			script["bytes"] = st.Size()
		} else {
			script["error"] = err.Error()
		}
	}

	width, height := ac.Width, ac.Height
	if width == 0 && tty.Width > 0 {
		width = tty.Width
	}
	if height == 0 && tty.Height > 0 {
		height = tty.Height
	}
	window := map[string]interface{}{
		"title":   ac.Title,
		"width":   width,
		"height":  height,
		"toolkit": effectiveToolkit(ac),
	}
	if window["toolkit"] == app.ToolkitTerm {
		window["interactive"] = tty.Stream != ""
	}

	return map[string]interface{}{
		"host":      ac.Host,
		"script":    script,
		"window":    window,
		"benchmark": ac.Benchmark,
		"delivery": map[string]interface{}{
			"coalesce":   ac.Coalesce.String(),
			"poll":       ac.Poll.String(),
			"queueLimit": ac.QueueLimit,
		},
		"terminal": tty,
		"argv":     cfg.Args,
		"flags":    cfg.Flags,
		"log": map[string]interface{}{
			"file":  cfg.Logging.FilePath,
			"trace": cfg.Logging.Trace,
		},
	}
}

// effectiveToolkit mirrors the choice app.Run makes.
func effectiveToolkit(ac app.Config) string {
	if ac.Toolkit == app.ToolkitHeadless || ac.Toolkit == "" && ac.Benchmark {
		return app.ToolkitHeadless
	}
	return app.ToolkitTerm
}
