package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/atomicstack/nativebridge/internal/eventbridge"
	"github.com/atomicstack/nativebridge/internal/host"
	"github.com/atomicstack/nativebridge/internal/lifecycle"
	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/loop"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/native/headless"
	"github.com/atomicstack/nativebridge/internal/ui"
	"github.com/dop251/goja"
)

// Host and toolkit names accepted by Config.
const (
	HostGoja        = "goja"
	HostWebview     = "webview"
	ToolkitTerm     = "term"
	ToolkitHeadless = "headless"
)

// Config describes user-provided application options.
type Config struct {
	Script     string
	Host       string
	Toolkit    string
	Title      string
	Width      int
	Height     int
	Coalesce   time.Duration
	Poll       time.Duration
	QueueLimit int
	Benchmark  bool
	// Stdout receives the benchmark "ready" line; nil means os.Stdout.
	Stdout io.Writer
}

// runner is a toolkit that owns a blocking render loop.
type runner interface {
	Run() error
}

// Run opens one window, runs the page script and returns once the window
// has closed.
func Run(cfg Config) error {
	name, src, err := loadScript(cfg.Script)
	if err != nil {
		return err
	}

	lp := loop.NewEventLoop()
	kit, run := newToolkit(cfg, lp)

	switch cfg.Host {
	case "", HostGoja:
		return runScriptHost(cfg, lp, kit, run, name, src)
	case HostWebview:
		return runWebviewHost(cfg, lp, kit, run, name, src)
	default:
		return fmt.Errorf("unknown host %q", cfg.Host)
	}
}

func loadScript(path string) (string, string, error) {
	if path == "" {
		return "", "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	return filepath.Base(path), string(data), nil
}

func newToolkit(cfg Config, sched loop.Scheduler) (native.Toolkit, runner) {
	if cfg.Toolkit == ToolkitHeadless || cfg.Benchmark && cfg.Toolkit == "" {
		return headless.New(), nil
	}
	kit := ui.NewToolkit(sched, ui.Options{Title: cfg.Title, Width: cfg.Width, Height: cfg.Height})
	return kit, kit
}

func windowOptions(cfg Config, kit native.Toolkit, page eventbridge.Page, sched loop.Scheduler, done chan<- string, after func()) lifecycle.Options {
	return lifecycle.Options{
		Title:      cfg.Title,
		Toolkit:    kit,
		Page:       page,
		Scheduler:  sched,
		Clipboard:  native.DefaultClipboard(),
		Coalesce:   cfg.Coalesce,
		QueueLimit: cfg.QueueLimit,
		OnClose: func(reason string) {
			if after != nil {
				after()
			}
			select {
			case done <- reason:
			default:
			}
		},
	}
}

func runScriptHost(cfg Config, lp *loop.EventLoop, kit native.Toolkit, run runner, name, src string) error {
	lp.Start()
	done := make(chan string, 1)
	ready := make(chan error, 1)
	var win *lifecycle.Window

	err := lp.RunOnRuntime(func(rt *goja.Runtime) {
		page := host.NewScriptPage(rt)
		win = lifecycle.Open(windowOptions(cfg, kit, page, lp, done, nil))
		if err := page.Install(win.Dispatch, host.ShimOptions{PollInterval: cfg.Poll, Actions: win.Router().Actions()}); err != nil {
			ready <- err
			return
		}
		events.App.Ready(win.ID())
		if src != "" {
			if err := page.Run(name, src); err != nil {
				ready <- err
				return
			}
		}
		ready <- nil
	})
	if err != nil {
		lp.Stop()
		return fmt.Errorf("start script host: %w", err)
	}
	if err := <-ready; err != nil {
		closeOnLoop(lp, win, "script-error")
		<-done
		lp.Stop()
		<-lp.Done()
		return err
	}
	return serve(cfg, lp, win, run, done)
}

func runWebviewHost(cfg Config, lp *loop.EventLoop, kit native.Toolkit, run runner, name, src string) error {
	page, err := host.OpenWebview(host.WebviewOptions{Title: cfg.Title, Width: cfg.Width, Height: cfg.Height})
	if err != nil {
		return err
	}
	lp.Start()
	done := make(chan string, 1)
	opened := make(chan *lifecycle.Window, 1)
	if err := lp.Post(func() {
		opened <- lifecycle.Open(windowOptions(cfg, titled{Toolkit: kit, page: page}, page, lp, done, page.Terminate))
	}); err != nil {
		return fmt.Errorf("open window: %w", err)
	}
	win := <-opened

	post := func(raw []byte) {
		if err := lp.Post(func() { win.Dispatch(raw) }); err != nil {
			logging.Error(fmt.Errorf("post page message: %w", err))
		}
	}
	if err := page.Install(post, host.ShimOptions{PollInterval: cfg.Poll, Actions: win.Router().Actions()}); err != nil {
		closeOnLoop(lp, win, "install-error")
		<-done
		lp.Stop()
		return err
	}
	if name == "" {
		name, src = "blank.html", "<!doctype html><title>"+cfg.Title+"</title>"
	}
	page.Load(name, src)
	events.App.Ready(win.ID())

	serveErr := make(chan error, 1)
	go func() { serveErr <- serve(cfg, lp, win, run, done) }()
	// the browser view owns the main goroutine until it is closed
	page.Run()
	closeOnLoop(lp, win, "webview-closed")
	return <-serveErr
}

// serve waits for the window to close. The toolkit's render loop, signals
// and benchmark mode all end the window through the UI loop.
func serve(cfg Config, lp *loop.EventLoop, win *lifecycle.Window, run runner, done chan string) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigs)
		close(sigs)
	}()
	go func() {
		if _, ok := <-sigs; ok {
			closeOnLoop(lp, win, "signal")
		}
	}()

	runErr := make(chan error, 1)
	if run != nil {
		go func() {
			err := run.Run()
			closeOnLoop(lp, win, "toolkit-exit")
			runErr <- err
		}()
	}

	if cfg.Benchmark {
		out := cfg.Stdout
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintln(out, "ready")
		closeOnLoop(lp, win, "benchmark")
	}

	reason := <-done
	events.App.Exit(reason)
	lp.Stop()
	<-lp.Done()
	if run != nil {
		if err := <-runErr; err != nil && !errors.Is(err, ui.ErrProgramKilled) {
			return err
		}
	}
	return nil
}

func closeOnLoop(lp *loop.EventLoop, win *lifecycle.Window, reason string) {
	if win == nil {
		return
	}
	if err := lp.Post(func() { win.Close(reason) }); err != nil && !errors.Is(err, loop.ErrStopped) {
		logging.Error(fmt.Errorf("close window: %w", err))
	}
}

// titled mirrors title changes onto the browser window.
type titled struct {
	native.Toolkit
	page *host.WebviewPage
}

func (t titled) SetTitle(title string) {
	t.Toolkit.SetTitle(title)
	t.page.SetTitle(title)
}
