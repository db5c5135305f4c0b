package types

// SecretPattern describes one secret family. Patterns are kept in PatternSet order,
// which is also their priority.
type SecretPattern struct {
	Name        string `json:"name" yaml:"name"`
	Regex       string `json:"regex" yaml:"regex"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Confidence  string `json:"confidence" yaml:"confidence"`
	// Generic marks catch-all patterns that must rank below every family-specific pattern
	Generic bool `json:"generic,omitempty" yaml:"generic,omitempty"`
}

// PatternSet is the ordered list of secret patterns. Index 0 has the highest priority.
type PatternSet []SecretPattern

// Names returns the family names in priority order.
func (s PatternSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, p := range s {
		names = append(names, p.Name)
	}
	return names
}

// RulesFile is the on-disk format of user supplied rules. It is compatible with
// the secrets-patterns-db layout: patterns: - pattern: {name, regex, confidence}.
type RulesFile struct {
	Patterns []RulesFileEntry `json:"patterns" yaml:"patterns"`
}

type RulesFileEntry struct {
	Pattern SecretPattern `json:"pattern" yaml:"pattern"`
}

// Finding is a span of text claimed by a pattern. Start and End are byte offsets, End exclusive.
type Finding struct {
	Pattern  SecretPattern
	Priority int
	Start    int
	End      int
	Line     int
	Text     string
}

type DetectionResult struct {
	Findings []Finding
	Error    error
}
