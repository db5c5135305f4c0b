package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHumanSize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      int64
		wantError bool
	}{
		{name: "megabytes", input: "10MB", want: 10 * 1000 * 1000},
		{name: "kilobytes lowercase", input: "500kb", want: 500 * 1000},
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "garbage", input: "lots", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHumanSize(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "10MB", HumanSize(10*1000*1000))
}

func TestMarshalYAML(t *testing.T) {
	doc := map[string][]string{"families": {"openai", "github"}}

	out, err := MarshalYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, "families:\n  - openai\n  - github\n", out)
}
