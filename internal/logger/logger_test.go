package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriterEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("month", "2025-12").Msg("close run finished")

	out := buf.String()
	if !strings.Contains(out, `"month":"2025-12"`) {
		t.Fatalf("missing structured field in %q", out)
	}
	if !strings.Contains(out, `"message":"close run finished"`) {
		t.Fatalf("missing message in %q", out)
	}
}

func TestLevelFromEnv(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"unknown": zerolog.InfoLevel,
	}

	for value, want := range cases {
		t.Setenv("FINCLOSE_LOG_LEVEL", value)
		if got := levelFromEnv(); got != want {
			t.Fatalf("level for %q: expected %s, got %s", value, want, got)
		}
	}
}
