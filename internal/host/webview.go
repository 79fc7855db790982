//go:build webview

package host

import (
	"encoding/json"
	"fmt"
	"strings"

	webview "github.com/webview/webview_go"
)

// WebviewAvailable reports whether this binary was built with a browser view.
const WebviewAvailable = true

// WebviewOptions configure the browser window.
type WebviewOptions struct {
	Title  string
	Width  int
	Height int
	Debug  bool
}

// WebviewPage is a page rendered by the system browser engine. Run must be
// called from the main goroutine; the other methods are safe from any
// goroutine.
type WebviewPage struct {
	w webview.WebView
}

// OpenWebview creates the browser window without showing it yet.
func OpenWebview(opts WebviewOptions) (*WebviewPage, error) {
	w := webview.New(opts.Debug)
	if w == nil {
		return nil, fmt.Errorf("webview: could not create window")
	}
	w.SetTitle(opts.Title)
	if opts.Width > 0 && opts.Height > 0 {
		w.SetSize(opts.Width, opts.Height, webview.HintNone)
	}
	return &WebviewPage{w: w}, nil
}

// Install binds post to the page and injects the shim into every document.
// post is called on the browser thread and must hand the message to the
// UI loop.
func (p *WebviewPage) Install(post func(raw []byte), opts ShimOptions) error {
	if err := p.w.Bind("__nativeBridgeHostPost", func(msg string) {
		post([]byte(msg))
	}); err != nil {
		return fmt.Errorf("bind host: %w", err)
	}
	prelude, err := hostPrelude(opts)
	if err != nil {
		return err
	}
	p.w.Init(prelude + shimSource)
	return nil
}

func hostPrelude(opts ShimOptions) (string, error) {
	actions, err := json.Marshal(opts.Actions)
	if err != nil {
		return "", fmt.Errorf("encode actions: %w", err)
	}
	return fmt.Sprintf(`window.__nativeBridgeHost = {
  postMessage: function (msg) { window.__nativeBridgeHostPost(msg); },
  pollInterval: %d,
  actions: %s
};
`, opts.PollInterval.Milliseconds(), actions), nil
}

// Load shows src. HTML documents are used as-is; anything else is run as a
// script inside an empty document.
func (p *WebviewPage) Load(name, src string) {
	if strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm") {
		p.w.SetHtml(src)
		return
	}
	p.w.SetHtml("<!doctype html><html><head><meta charset=\"utf-8\"></head><body><script>\n" + src + "\n</script></body></html>")
}

// EvaluateScript implements eventbridge.Page.
func (p *WebviewPage) EvaluateScript(js string) error {
	p.w.Dispatch(func() { p.w.Eval(js) })
	return nil
}

// SetTitle updates the browser window title.
func (p *WebviewPage) SetTitle(title string) {
	p.w.Dispatch(func() { p.w.SetTitle(title) })
}

// Run blocks on the browser's event loop until Terminate.
func (p *WebviewPage) Run() {
	p.w.Run()
	p.w.Destroy()
}

// Terminate stops Run.
func (p *WebviewPage) Terminate() {
	p.w.Terminate()
}
