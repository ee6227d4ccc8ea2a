// Cinematographus - Movie Metadata Aggregation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematographus

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"INFO", zerolog.InfoLevel},
		{"garbage", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("subject", "tt0133093").Msg("lookup started")

	out := buf.String()
	if !strings.Contains(out, `"subject":"tt0133093"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, `"message":"lookup started"`) {
		t.Errorf("expected message field in output, got %q", out)
	}
	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("expected level field in output, got %q", out)
	}
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Debug().Msg("should be dropped")
	Info().Msg("should be dropped too")
	Warn().Msg("should appear")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("below-threshold messages leaked: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn message missing from output: %q", out)
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	logger := Component("cache")
	logger.Info().Msg("sweep complete")

	if !strings.Contains(buf.String(), `"component":"cache"`) {
		t.Errorf("component field missing: %q", buf.String())
	}
}

func TestErrConvenience(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Err(errTest).Msg("operation failed")

	out := buf.String()
	if !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("error field missing: %q", out)
	}
	if !strings.Contains(out, `"level":"error"`) {
		t.Errorf("expected error level: %q", out)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

var errTest = testError("boom")

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info().Str("k", "v").Msg("captured")

	if !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("test logger did not capture output: %q", buf.String())
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	original := Logger()
	defer SetLogger(original)

	SetLogger(NewTestLogger(&buf))
	Info().Msg("through replacement")

	if !strings.Contains(buf.String(), "through replacement") {
		t.Errorf("replaced logger not used: %q", buf.String())
	}
}
