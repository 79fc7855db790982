package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Host != "goja" {
		t.Fatalf("expected goja host, got %q", cfg.App.Host)
	}
	if cfg.App.Coalesce != 50*time.Millisecond {
		t.Fatalf("expected 50ms coalesce window, got %s", cfg.App.Coalesce)
	}
	if cfg.App.Poll != 25*time.Millisecond {
		t.Fatalf("expected 25ms poll interval, got %s", cfg.App.Poll)
	}
	if cfg.App.QueueLimit != 256 {
		t.Fatalf("expected queue limit 256, got %d", cfg.App.QueueLimit)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadArgsFlagsOverrideEnvironment(t *testing.T) {
	env := []string{
		"NATIVEBRIDGE_TITLE=from-env",
		"NATIVEBRIDGE_COALESCE=10ms",
		"NATIVEBRIDGE_BENCHMARK=true",
		"NATIVEBRIDGE_QUEUE=not-a-number",
	}
	cfg, err := LoadArgs([]string{"-title", "from-flag", "-toolkit", "headless", "page.js"}, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.App.Title != "from-flag" {
		t.Fatalf("expected flag title, got %q", cfg.App.Title)
	}
	if cfg.App.Coalesce != 10*time.Millisecond {
		t.Fatalf("expected env coalesce 10ms, got %s", cfg.App.Coalesce)
	}
	if !cfg.App.Benchmark {
		t.Fatalf("expected benchmark from env")
	}
	if cfg.App.QueueLimit != 256 {
		t.Fatalf("expected invalid env queue to fall back, got %d", cfg.App.QueueLimit)
	}
	if cfg.App.Script != "page.js" {
		t.Fatalf("expected positional script, got %q", cfg.App.Script)
	}
	if cfg.Flags["toolkit"] != "headless" || cfg.Flags["coalesce"] != "10ms" {
		t.Fatalf("expected flags map to mirror values, got %v", cfg.Flags)
	}
}

func TestLoadArgsRejectsNegativeSize(t *testing.T) {
	if _, err := LoadArgs([]string{"-width", "-1"}, nil); err == nil {
		t.Fatalf("expected error for negative width")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"-host", "carrier"}, "unknown host"},
		{[]string{"-toolkit", "gtk"}, "unknown toolkit"},
		{[]string{"-coalesce", "0s"}, "coalesce"},
		{[]string{"-poll", "-1s"}, "poll"},
		{[]string{"-queue", "0"}, "queue"},
	}
	for _, tc := range cases {
		cfg, err := LoadArgs(tc.args, nil)
		if err != nil {
			t.Fatalf("load %v: %v", tc.args, err)
		}
		err = Validate(cfg)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("expected %q error for %v, got %v", tc.want, tc.args, err)
		}
	}
}
