package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Action describes what happened to a detected secret.
type Action string

const (
	// ActionRedacted means the secret was replaced in the file on disk.
	ActionRedacted Action = "redacted"
	// ActionWouldRedact means the secret was found during a dry run.
	ActionWouldRedact Action = "would-redact"
)

// HitLevel is the level hit events are filtered by. Hits are written as errors
// and renamed to "hit" by HitLevelWriter.
const HitLevel zerolog.Level = zerolog.WarnLevel

const hitMarker = "_hit"

// HitLevelWriter rewrites the level of the next marked JSON log line to "hit".
type HitLevelWriter struct {
	out       io.Writer
	mu        sync.Mutex
	nextIsHit bool
}

func NewHitLevelWriter(out io.Writer) *HitLevelWriter {
	return &HitLevelWriter{out: out}
}

func (w *HitLevelWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	isHit := w.nextIsHit
	w.nextIsHit = false
	out := w.out
	w.mu.Unlock()

	if !isHit || len(p) == 0 {
		return out.Write(p)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(p, &entry); err != nil {
		return out.Write(p)
	}
	if entry["level"] == "warn" || entry["level"] == "error" {
		entry["level"] = "hit"
	}
	delete(entry, hitMarker)

	rewritten, err := json.Marshal(entry)
	if err != nil {
		return out.Write(p)
	}
	if _, err := out.Write(append(rewritten, '\n')); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *HitLevelWriter) SetOutput(out io.Writer) {
	w.mu.Lock()
	w.out = out
	w.mu.Unlock()
}

func (w *HitLevelWriter) markNextAsHit() {
	w.mu.Lock()
	w.nextIsHit = true
	w.mu.Unlock()
}

// HitEvent is a zerolog event that is written with level "hit".
type HitEvent struct {
	event  *zerolog.Event
	writer *HitLevelWriter
}

func (h *HitEvent) Str(key, val string) *HitEvent {
	h.event.Str(key, val)
	return h
}

func (h *HitEvent) Int(key string, val int) *HitEvent {
	h.event.Int(key, val)
	return h
}

func (h *HitEvent) Bool(key string, val bool) *HitEvent {
	h.event.Bool(key, val)
	return h
}

func (h *HitEvent) Action(action Action) *HitEvent {
	h.event.Str("action", string(action))
	return h
}

func (h *HitEvent) Msg(msg string) {
	if h.writer != nil {
		h.writer.markNextAsHit()
	}
	h.event.Bool(hitMarker, true).Msg(msg)
}

var (
	globalHitWriter     *HitLevelWriter
	globalHitWriterOnce sync.Once
)

func setupGlobalHitWriter() {
	globalHitWriterOnce.Do(func() {
		globalHitWriter = NewHitLevelWriter(os.Stderr)
		log.Logger = zerolog.New(globalHitWriter).With().Timestamp().Logger()
	})
}

// Hit starts a hit event, e.g. logging.Hit().Str("file", path).Msg("HIT").
func Hit() *HitEvent {
	if globalHitWriter == nil {
		setupGlobalHitWriter()
	}
	return &HitEvent{
		event:  log.WithLevel(zerolog.ErrorLevel),
		writer: globalHitWriter,
	}
}

// ParseLevel extends zerolog.ParseLevel with the "hit" level.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "hit" {
		return HitLevel, nil
	}
	return zerolog.ParseLevel(level)
}

// SetGlobalHitWriter sets the writer that Hit marks events on.
func SetGlobalHitWriter(writer *HitLevelWriter) {
	globalHitWriter = writer
}
