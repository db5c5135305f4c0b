package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureHits(t *testing.T) *bytes.Buffer {
	t.Helper()
	originalLogger := log.Logger
	originalWriter := globalHitWriter
	t.Cleanup(func() {
		log.Logger = originalLogger
		globalHitWriter = originalWriter
	})

	buf := &bytes.Buffer{}
	hitWriter := NewHitLevelWriter(buf)
	log.Logger = zerolog.New(hitWriter).With().Logger()
	SetGlobalHitWriter(hitWriter)
	return buf
}

func TestHit(t *testing.T) {
	buf := captureHits(t)

	Hit().Str("file", "app/.env").Int("line", 3).Str("family", "OpenAI API Key").Action(ActionRedacted).Msg("HIT")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "hit", entry["level"])
	assert.Equal(t, "app/.env", entry["file"])
	assert.Equal(t, float64(3), entry["line"])
	assert.Equal(t, "OpenAI API Key", entry["family"])
	assert.Equal(t, "redacted", entry["action"])
	assert.Equal(t, "HIT", entry["message"])
	assert.NotContains(t, entry, "_hit")
}

func TestHitDoesNotLeakToNextLine(t *testing.T) {
	buf := captureHits(t)

	Hit().Bool("dryRun", true).Msg("HIT")
	log.Warn().Msg("after")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "warn", second["level"])
}

func TestHitLevelWriterWrite(t *testing.T) {
	tests := []struct {
		name          string
		markAsHit     bool
		input         string
		expectedLevel string
	}{
		{
			name:          "normal warn log",
			input:         `{"level":"warn","message":"test"}` + "\n",
			expectedLevel: "warn",
		},
		{
			name:          "marked error log",
			markAsHit:     true,
			input:         `{"level":"error","_hit":true,"message":"test"}` + "\n",
			expectedLevel: "hit",
		},
		{
			name:          "marked info log keeps its level",
			markAsHit:     true,
			input:         `{"level":"info","_hit":true,"message":"test"}` + "\n",
			expectedLevel: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			writer := NewHitLevelWriter(buf)
			if tt.markAsHit {
				writer.markNextAsHit()
			}

			n, err := writer.Write([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, len(tt.input), n)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.expectedLevel, entry["level"])
			if tt.markAsHit {
				assert.NotContains(t, entry, "_hit")
			}
		})
	}
}

func TestHitLevelWriterNonJSONPassthrough(t *testing.T) {
	buf := &bytes.Buffer{}
	writer := NewHitLevelWriter(buf)
	writer.markNextAsHit()

	plain := []byte("plain text log\n")
	n, err := writer.Write(plain)
	require.NoError(t, err)
	assert.Equal(t, len(plain), n)
	assert.Equal(t, string(plain), buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input     string
		expected  zerolog.Level
		expectErr bool
	}{
		{input: "hit", expected: HitLevel},
		{input: "debug", expected: zerolog.DebugLevel},
		{input: "info", expected: zerolog.InfoLevel},
		{input: "warn", expected: zerolog.WarnLevel},
		{input: "invalid", expected: zerolog.NoLevel, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}
