package cli

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/bft-labs/propship/internal/config"
)

type call struct {
	path      string
	overrides config.Values
}

func newTestSpec(calls *[]call, runErr error) Spec {
	return Spec{
		App: config.AppClient,
		Use: "propship-client",
		Run: func(_ context.Context, path string, overrides config.Values) error {
			*calls = append(*calls, call{path, overrides})
			return runErr
		},
	}
}

func TestNewCommand_Args(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantErr   bool
		wantCalls []call
	}{
		{
			name:      "one argument",
			args:      []string{"client.properties"},
			wantCalls: []call{{"client.properties", config.Values{}}},
		},
		{
			name:    "no argument",
			args:    []string{},
			wantErr: true,
		},
		{
			name:    "two arguments",
			args:    []string{"a.properties", "b.properties"},
			wantErr: true,
		},
		{
			name:      "log level flag",
			args:      []string{"--log-level", "debug", "client.toml"},
			wantCalls: []call{{"client.toml", config.Values{"client.logLevel": "debug"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []call
			cmd := NewCommand(newTestSpec(&calls, nil))
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, errUsage) {
					t.Errorf("Execute() error = %v, want usage error", err)
				}
				if !strings.Contains(out.String(), "Usage:") {
					t.Errorf("usage not printed: %q", out.String())
				}
				if strings.Contains(out.String(), "Error:") {
					t.Errorf("error printed by cobra: %q", out.String())
				}
			}
			if !reflect.DeepEqual(calls, tt.wantCalls) {
				t.Errorf("calls = %v, want %v", calls, tt.wantCalls)
			}
		})
	}
}

func TestExecute_ExitCode(t *testing.T) {
	var calls []call

	ok := NewCommand(newTestSpec(&calls, nil))
	ok.SetArgs([]string{"c.properties"})
	if code := Execute(ok); code != 0 {
		t.Errorf("Execute() = %d, want 0", code)
	}

	failing := NewCommand(newTestSpec(&calls, errors.New("boom")))
	failing.SetArgs([]string{"c.properties"})
	var out bytes.Buffer
	failing.SetOut(&out)
	failing.SetErr(&out)
	if code := Execute(failing); code != 1 {
		t.Errorf("Execute() = %d, want 1", code)
	}
	if out.Len() != 0 {
		t.Errorf("command printed %q, want the error logged once by Execute", out.String())
	}
}

func TestLoggerFor(t *testing.T) {
	if _, err := LoggerFor("debug"); err != nil {
		t.Errorf("LoggerFor(debug) error = %v", err)
	}
	if _, err := LoggerFor("chatty"); err == nil {
		t.Error("LoggerFor(chatty) succeeded, want error")
	}
}
