// Package redact rewrites text by replacing secret findings with placeholders.
package redact

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/alexai-ops/secretscrub/pkg/scanner/types"
)

// Result is the outcome of Apply.
type Result struct {
	Text     []byte
	Changed  bool
	Replaced int
}

// Apply replaces every finding span in text with the finding's placeholder, or
// generic when the pattern has none. Bytes outside the spans are copied as is.
// Findings must not overlap; they may be given in any order.
func Apply(text []byte, findings []types.Finding, generic string) (Result, error) {
	if len(findings) == 0 {
		return Result{Text: text}, nil
	}

	ordered := make([]types.Finding, len(findings))
	copy(ordered, findings)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	var out bytes.Buffer
	out.Grow(len(text))

	cursor := 0
	for _, f := range ordered {
		if f.Start < cursor || f.End > len(text) || f.Start >= f.End {
			return Result{}, fmt.Errorf("invalid finding span [%d,%d) for rule %q", f.Start, f.End, f.Pattern.Name)
		}
		out.Write(text[cursor:f.Start])
		out.WriteString(Placeholder(f.Pattern, generic))
		cursor = f.End
	}
	out.Write(text[cursor:])

	redacted := out.Bytes()
	return Result{
		Text:     redacted,
		Changed:  !bytes.Equal(redacted, text),
		Replaced: len(ordered),
	}, nil
}

// Placeholder returns the replacement text for a pattern.
func Placeholder(p types.SecretPattern, generic string) string {
	if p.Placeholder != "" {
		return p.Placeholder
	}
	return generic
}
