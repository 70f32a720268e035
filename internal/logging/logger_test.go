package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, "json")

	logger.Error("boom", "error", errors.New("bad"))

	out := buf.String()
	if !strings.Contains(out, `"err":"bad"`) {
		t.Errorf("expected err key in %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	if err != nil || level != slog.LevelDebug {
		t.Errorf("ParseLevel(debug) = %v, %v", level, err)
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Error("ParseLevel should reject unknown levels")
	}
}
