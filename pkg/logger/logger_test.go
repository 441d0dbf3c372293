package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithRecord(ctx, "material_request", "mrf-1")

	log.Error(ctx, "boom", errors.New("boom"))

	for _, field := range []string{"\"request_id\"", "\"entity\"", "\"record_id\"", "\"stack\""} {
		if !bytes.Contains(buf.Bytes(), []byte(field)) {
			t.Fatalf("expected %s in entry=%s", field, buf.String())
		}
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("warn"), Output: buf})

	log.Info(context.Background(), "quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be suppressed at warn level; entry=%s", buf.String())
	}
	log.Warn(context.Background(), "loud")
	if !bytes.Contains(buf.Bytes(), []byte("loud")) {
		t.Fatalf("expected warn entry; entry=%s", buf.String())
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %v", lvl)
	}
	if lvl := ParseLevel(" DEBUG "); lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v", lvl)
	}
}

func TestLoggerScopesFieldsToContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	root := context.Background()
	scoped := log.WithEventID(root, "evt-1")
	log.Info(scoped, "with event")
	log.Info(root, "without event")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected two entries, got %d: %s", len(lines), buf.String())
	}
	if !bytes.Contains(lines[0], []byte(`"event_id":"evt-1"`)) {
		t.Fatalf("scoped entry lost its field: %s", lines[0])
	}
	if bytes.Contains(lines[1], []byte("event_id")) {
		t.Fatalf("field leaked into parent context: %s", lines[1])
	}
}
