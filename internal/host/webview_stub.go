//go:build !webview

package host

import "errors"

// WebviewAvailable reports whether this binary was built with a browser view.
const WebviewAvailable = false

// ErrNoWebview is returned when the binary was built without the webview tag.
var ErrNoWebview = errors.New("host: built without webview support (rebuild with -tags webview)")

// WebviewOptions configure the browser window.
type WebviewOptions struct {
	Title  string
	Width  int
	Height int
	Debug  bool
}

// WebviewPage is unavailable in this build.
type WebviewPage struct{}

// OpenWebview always fails in this build.
func OpenWebview(WebviewOptions) (*WebviewPage, error) { return nil, ErrNoWebview }

func (*WebviewPage) Install(func([]byte), ShimOptions) error { return ErrNoWebview }
func (*WebviewPage) Load(string, string)                     {}
func (*WebviewPage) EvaluateScript(string) error             { return ErrNoWebview }
func (*WebviewPage) SetTitle(string)                         {}
func (*WebviewPage) Run()                                    {}
func (*WebviewPage) Terminate()                              {}
