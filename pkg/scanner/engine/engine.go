package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/alexai-ops/secretscrub/pkg/scanner/types"
	"github.com/rs/zerolog/log"
	"github.com/wandb/parallel"
)

// reservedPlaceholder matches placeholders written by earlier runs, including
// the ones derived from detector names at runtime.
var reservedPlaceholder = regexp.MustCompile(`\b[A-Z0-9]+(?:_[A-Z0-9]+)*_PLACEHOLDER\b`)

// Secret is a raw credential reported by a Detector.
type Secret struct {
	Family string
	Value  []byte
}

// Detector is an additional detection stage ranked after the built-in
// families and before the generic patterns.
type Detector interface {
	Name() string
	Detect(ctx context.Context, text []byte) ([]Secret, error)
}

type Options struct {
	// GenericPlaceholder is used for patterns without a placeholder of their own
	GenericPlaceholder string
	// Detectors are extra detection stages, e.g. TruffleHog
	Detectors []Detector
	// MaxGoRoutines bounds how many patterns are evaluated concurrently per text
	MaxGoRoutines int
	// HitTimeout bounds detection per text, zero disables it. On timeout the
	// caller gets an error right away, but the running regexes are not
	// interruptible and keep the text referenced until they finish.
	HitTimeout time.Duration
}

type compiledPattern struct {
	pattern  types.SecretPattern
	priority int
	re       *regexp.Regexp
	group    int
}

// Matcher finds secrets in text. It is immutable after construction and safe for concurrent use.
type Matcher struct {
	patterns      []compiledPattern
	detectors     []Detector
	detectorRank  int
	placeholders  []string
	generic       string
	maxGoRoutines int
	hitTimeout    time.Duration
}

type candidate struct {
	pattern  types.SecretPattern
	priority int
	start    int
	end      int
}

type span struct {
	start int
	end   int
}

// NewMatcher compiles the pattern set. Generic patterns must already be ordered
// behind the family-specific ones (see rules.Order); the detector stage is ranked between them.
func NewMatcher(set types.PatternSet, opts Options) (*Matcher, error) {
	if opts.GenericPlaceholder == "" {
		return nil, errors.New("generic placeholder cannot be empty")
	}

	m := &Matcher{
		detectors:     opts.Detectors,
		detectorRank:  len(set),
		generic:       opts.GenericPlaceholder,
		maxGoRoutines: opts.MaxGoRoutines,
		hitTimeout:    opts.HitTimeout,
	}
	if m.maxGoRoutines < 1 {
		m.maxGoRoutines = 1
	}

	placeholders := []string{opts.GenericPlaceholder}
	seenGeneric := false
	for i, p := range set {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %q: %w", p.Name, err)
		}
		if seenGeneric && !p.Generic {
			return nil, fmt.Errorf("rule %q is ranked behind a generic rule", p.Name)
		}

		priority := i
		if p.Generic {
			if !seenGeneric {
				m.detectorRank = i
			}
			seenGeneric = true
			priority = i + 1
		}

		m.patterns = append(m.patterns, compiledPattern{
			pattern:  p,
			priority: priority,
			re:       re,
			group:    re.SubexpIndex("secret"),
		})
		if p.Placeholder != "" && !slices.Contains(placeholders, p.Placeholder) {
			placeholders = append(placeholders, p.Placeholder)
		}
	}

	// longest first so a placeholder containing another one is claimed whole
	sort.SliceStable(placeholders, func(i, j int) bool { return len(placeholders[i]) > len(placeholders[j]) })
	m.placeholders = placeholders

	return m, nil
}

// GenericPlaceholder returns the replacement used by patterns without a placeholder.
func (m *Matcher) GenericPlaceholder() string {
	return m.generic
}

// PlaceholderFor returns the text that replaces a finding of pattern p.
func (m *Matcher) PlaceholderFor(p types.SecretPattern) string {
	if p.Placeholder != "" {
		return p.Placeholder
	}
	return m.generic
}

// Match reports the highest priority pattern with at least one finding in text.
func (m *Matcher) Match(ctx context.Context, text []byte) (types.SecretPattern, bool, error) {
	findings, err := m.FindAll(ctx, text)
	if err != nil {
		return types.SecretPattern{}, false, err
	}
	if len(findings) == 0 {
		return types.SecretPattern{}, false, nil
	}

	best := findings[0]
	for _, f := range findings[1:] {
		if f.Priority < best.Priority || (f.Priority == best.Priority && f.Start < best.Start) {
			best = f
		}
	}
	return best.Pattern, true, nil
}

// FindAll returns non-overlapping findings sorted by offset. Each span is
// resolved independently: a match is kept only if no higher priority match
// and no existing placeholder overlaps it.
func (m *Matcher) FindAll(ctx context.Context, text []byte) ([]types.Finding, error) {
	if len(text) == 0 {
		return nil, nil
	}

	if m.hitTimeout <= 0 {
		return m.findAll(ctx, text)
	}

	ctx, cancel := context.WithTimeout(ctx, m.hitTimeout)
	defer cancel()

	result := make(chan types.DetectionResult, 1)
	go func() {
		findings, err := m.findAll(ctx, text)
		result <- types.DetectionResult{Findings: findings, Error: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.New("hit detection timed out (" + m.hitTimeout.String() + ")")
		}
		return nil, ctx.Err()
	case r := <-result:
		return r.Findings, r.Error
	}
}

func (m *Matcher) findAll(ctx context.Context, text []byte) ([]types.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	group := parallel.Limited(ctx, m.maxGoRoutines)
	resultsChan := make(chan []candidate, len(m.patterns)+len(m.detectors))

	for _, cp := range m.patterns {
		group.Go(func(ctx context.Context) {
			resultsChan <- cp.candidates(text)
		})
	}

	for _, detector := range m.detectors {
		group.Go(func(ctx context.Context) {
			secrets, err := detector.Detect(ctx, text)
			if err != nil {
				log.Debug().Err(err).Str("detector", detector.Name()).Msg("Detector failed")
				return
			}
			resultsChan <- m.detectorCandidates(text, secrets)
		})
	}

	group.Wait()
	close(resultsChan)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := []candidate{}
	for found := range resultsChan {
		candidates = append(candidates, found...)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority < candidates[j].priority
		}
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		if candidates[i].end != candidates[j].end {
			return candidates[i].end > candidates[j].end
		}
		return candidates[i].pattern.Name < candidates[j].pattern.Name
	})

	claimed := m.placeholderSpans(text)
	findings := []types.Finding{}
	for _, c := range candidates {
		if overlapsAny(claimed, c.start, c.end) {
			continue
		}
		claimed = append(claimed, span{start: c.start, end: c.end})
		findings = append(findings, types.Finding{
			Pattern:  c.pattern,
			Priority: c.priority,
			Start:    c.start,
			End:      c.end,
			Line:     lineOf(text, c.start),
			Text:     string(text[c.start:c.end]),
		})
	}

	sort.Slice(findings, func(i, j int) bool { return findings[i].Start < findings[j].Start })
	return findings, nil
}

func (cp compiledPattern) candidates(text []byte) []candidate {
	matches := cp.re.FindAllSubmatchIndex(text, -1)
	found := make([]candidate, 0, len(matches))
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		if cp.group > 0 && loc[2*cp.group] >= 0 {
			start, end = loc[2*cp.group], loc[2*cp.group+1]
		}
		if start == end {
			continue
		}
		found = append(found, candidate{pattern: cp.pattern, priority: cp.priority, start: start, end: end})
	}
	return found
}

func (m *Matcher) detectorCandidates(text []byte, secrets []Secret) []candidate {
	found := []candidate{}
	for _, secret := range secrets {
		if len(secret.Value) == 0 {
			continue
		}
		pattern := types.SecretPattern{
			Name:        secret.Family,
			Placeholder: DetectorPlaceholder(secret.Family),
			Confidence:  "trufflehog-unverified",
		}
		for _, start := range indexAll(text, secret.Value) {
			found = append(found, candidate{pattern: pattern, priority: m.detectorRank, start: start, end: start + len(secret.Value)})
		}
	}
	return found
}

// DetectorPlaceholder derives the placeholder for a detector family, e.g. "Github" -> "GITHUB_PLACEHOLDER".
func DetectorPlaceholder(family string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToUpper(family) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	name := strings.TrimSuffix(b.String(), "_")
	if name == "" {
		name = "SECRET"
	}
	return name + "_PLACEHOLDER"
}

func (m *Matcher) placeholderSpans(text []byte) []span {
	spans := []span{}
	for _, placeholder := range m.placeholders {
		for _, start := range indexAll(text, []byte(placeholder)) {
			end := start + len(placeholder)
			if !overlapsAny(spans, start, end) {
				spans = append(spans, span{start: start, end: end})
			}
		}
	}
	for _, loc := range reservedPlaceholder.FindAllIndex(text, -1) {
		if !overlapsAny(spans, loc[0], loc[1]) {
			spans = append(spans, span{start: loc[0], end: loc[1]})
		}
	}
	return spans
}

func overlapsAny(spans []span, start, end int) bool {
	for _, s := range spans {
		if s.start < end && start < s.end {
			return true
		}
	}
	return false
}

func indexAll(text []byte, needle []byte) []int {
	offsets := []int{}
	if len(needle) == 0 {
		return offsets
	}
	for offset := 0; offset <= len(text)-len(needle); {
		i := bytes.Index(text[offset:], needle)
		if i < 0 {
			break
		}
		offsets = append(offsets, offset+i)
		offset += i + len(needle)
	}
	return offsets
}

func lineOf(text []byte, offset int) int {
	return bytes.Count(text[:offset], []byte("\n")) + 1
}
