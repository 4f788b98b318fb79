package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize text logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("JSON")); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestLoggerJSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat(FormatJSON), WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	ctx := ContextWithRequestID(context.Background(), "req-42")
	Named("api").Info(ctx, "handled", String("op", "fibonacci"), Int("status", 200))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "handled" {
		t.Errorf("msg = %v", line["msg"])
	}
	if line["request_id"] != "req-42" {
		t.Errorf("request_id = %v", line["request_id"])
	}
	if line["logger"] != "api" {
		t.Errorf("logger = %v", line["logger"])
	}
	if line["op"] != "fibonacci" {
		t.Errorf("op = %v", line["op"])
	}
	source, _ := line["source"].(string)
	if !strings.Contains(source, "logger_test.go") {
		t.Errorf("source = %q, want the calling test file", source)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	Get().Debug(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	if err := SetLevelString("debug"); err != nil {
		t.Fatalf("SetLevelString: %v", err)
	}
	Get().Debug(ctx, "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug line missing: %q", buf.String())
	}

	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context returned %q", got)
	}
	//nolint:staticcheck // nil context is tolerated on purpose
	if got := RequestIDFromContext(nil); got != "" {
		t.Errorf("nil context returned %q", got)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error(context.Background(), "dropped", Error(nil))
	if l.Named("x") == nil {
		t.Fatal("named nop logger is nil")
	}
}
