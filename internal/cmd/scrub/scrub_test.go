package scrub

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexai-ops/secretscrub/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openAIKey = "sk-ABCDEFGHIJKLMNOPQRSTUVWX1234"

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
	return root
}

func TestNewScrubCmd(t *testing.T) {
	cmd := NewScrubCmd()

	assert.Equal(t, "scrub [root]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Example)
	for _, name := range []string{"ext", "exclude-dir", "max-file-size", "placeholder", "rules", "confidence", "threads", "trufflehog", "hit-timeout"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestScrubCommand(t *testing.T) {
	root := writeTree(t, map[string]string{"app/settings.py": "token=" + openAIKey})

	cmd := NewScrubCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{root})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "Scanned 1 files, modified 1 [OpenAI API Key=1]\n", out.String())
	content, err := os.ReadFile(filepath.Join(root, "app", "settings.py"))
	require.NoError(t, err)
	assert.Equal(t, "token=sk-OPENAI_API_KEY_PLACEHOLDER", string(content))
}

func TestCheckCommand(t *testing.T) {
	t.Run("secrets found", func(t *testing.T) {
		root := writeTree(t, map[string]string{"a.py": "token=" + openAIKey})

		cmd := NewCheckCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs([]string{root})

		assert.ErrorIs(t, cmd.Execute(), ErrSecretsFound)
		assert.Equal(t, "Scanned 1 files, would modify 1 [OpenAI API Key=1]\n", out.String())

		content, err := os.ReadFile(filepath.Join(root, "a.py"))
		require.NoError(t, err)
		assert.Equal(t, "token="+openAIKey, string(content))
	})

	t.Run("clean tree", func(t *testing.T) {
		root := writeTree(t, map[string]string{"a.py": "print('hello')\n"})

		cmd := NewCheckCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{root})
		assert.NoError(t, cmd.Execute())
	})
}

func TestExecuteEmptyDirectory(t *testing.T) {
	out := &bytes.Buffer{}
	summary, err := execute(context.Background(), newCommandOptions(false), []string{t.TempDir()}, out)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Scanned)
	assert.Equal(t, "Scanned 0 files, modified 0\n", out.String())
}

func TestExecuteCustomPlaceholder(t *testing.T) {
	root := writeTree(t, map[string]string{"hashes.txt": "da39a3ee5e6b4b0d3255bfef95601890afd80709\n"})

	opts := newCommandOptions(false)
	opts.Placeholder = "[REDACTED]"
	_, err := execute(context.Background(), opts, []string{root}, &bytes.Buffer{})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "hashes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED]\n", string(content))
}

func TestResolveOptions(t *testing.T) {
	root := t.TempDir()

	t.Run("defaults", func(t *testing.T) {
		opts, err := ResolveOptions(config.DefaultScrubOptions(), "2MB", []string{root})
		require.NoError(t, err)
		assert.Equal(t, root, opts.Root)
		assert.Equal(t, int64(2000000), opts.MaxFileSize)
		assert.Contains(t, opts.Extensions, ".py")
	})

	t.Run("extensions without dot", func(t *testing.T) {
		in := config.DefaultScrubOptions()
		in.Extensions = []string{"PY", ".Env"}
		opts, err := ResolveOptions(in, "", []string{root})
		require.NoError(t, err)
		assert.Equal(t, []string{".py", ".env"}, opts.Extensions)
	})

	tests := []struct {
		name        string
		modify      func(o *config.ScrubOptions)
		maxFileSize string
		args        []string
	}{
		{name: "missing root", args: []string{filepath.Join(root, "missing")}},
		{name: "invalid size", maxFileSize: "huge", args: []string{root}},
		{name: "empty placeholder", modify: func(o *config.ScrubOptions) { o.Placeholder = "" }, args: []string{root}},
		{name: "too many threads", modify: func(o *config.ScrubOptions) { o.MaxScanGoRoutines = 1000 }, args: []string{root}},
		{name: "bad rules url", modify: func(o *config.ScrubOptions) { o.RuleSources = []string{"http://"} }, args: []string{root}},
		{name: "negative timeout", modify: func(o *config.ScrubOptions) { o.HitTimeout = -1 }, args: []string{root}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := config.DefaultScrubOptions()
			if tt.modify != nil {
				tt.modify(&in)
			}
			_, err := ResolveOptions(in, tt.maxFileSize, tt.args)
			assert.Error(t, err)
		})
	}
}
