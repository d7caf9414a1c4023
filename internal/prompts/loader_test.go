package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownKey(t *testing.T) {
	template, err := Get(KeyDecompose)
	require.NoError(t, err)
	assert.Contains(t, template, "acceptance_criteria")
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("nope")
	assert.Error(t, err)
}

func TestFormat_ReplacesPlaceholders(t *testing.T) {
	out := Format("Epic: {{.Epic}} max {{.MaxStories}}", map[string]string{
		"Epic":       "Notifications",
		"MaxStories": "8",
	})
	assert.Equal(t, "Epic: Notifications max 8", out)
}

func TestFormat_RepeatedPlaceholder(t *testing.T) {
	out := Format("{{.X}} and {{.X}}", map[string]string{"X": "y"})
	assert.Equal(t, "y and y", out)
}

func TestDefaultTemplates(t *testing.T) {
	assert.True(t, strings.Contains(DefaultDecomposeTemplate(), "{{.Epic}}"))
	assert.True(t, strings.Contains(DefaultRegenerateTemplate(), "{{.Story}}"))
}
