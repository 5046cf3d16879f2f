package main

import (
	"flag"
	"io"
	"testing"

	"github.com/1broseidon/capsulewm/internal/wm"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOK   bool
	}{
		{name: "no args", args: nil, wantCode: 0, wantOK: true},
		{name: "known flag", args: []string{"--json"}, wantCode: 0, wantOK: true},
		{name: "help", args: []string{"--help"}, wantCode: 0, wantOK: false},
		{name: "unknown flag", args: []string{"--nope"}, wantCode: 2, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			fs.Bool("json", false, "")
			code, ok := parseFlags(fs, tt.args)
			if code != tt.wantCode || ok != tt.wantOK {
				t.Fatalf("parseFlags(%v) = (%d, %v), want (%d, %v)", tt.args, code, ok, tt.wantCode, tt.wantOK)
			}
		})
	}
}

func TestWindowState(t *testing.T) {
	tests := []struct {
		w    wm.WindowState
		want string
	}{
		{w: wm.WindowState{}, want: "normal"},
		{w: wm.WindowState{Focused: true}, want: "normal,focused"},
		{w: wm.WindowState{Maximized: true}, want: "maximized"},
		{w: wm.WindowState{Minimized: true}, want: "minimized"},
		{w: wm.WindowState{Capsule: true, Minimized: true}, want: "capsule"},
	}
	for _, tt := range tests {
		if got := windowState(tt.w); got != tt.want {
			t.Fatalf("windowState(%+v) = %q, want %q", tt.w, got, tt.want)
		}
	}
}

func TestRunConfigPrintDefaults(t *testing.T) {
	if code := runConfig([]string{"print", "--defaults"}); code != 0 {
		t.Fatalf("config print --defaults exit = %d, want 0", code)
	}
	if code := runConfig([]string{"bogus"}); code != 2 {
		t.Fatalf("config bogus exit = %d, want 2", code)
	}
}
