package branding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddedValues(t *testing.T) {
	assert.Equal(t, "fmigen", CLIName())
	assert.Equal(t, ".fmigen", HomeDir())
	assert.Equal(t, "FMIGEN", EnvPrefix())
	assert.NotEmpty(t, Description())
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "FMIGEN_TRASH_DIR", EnvVar("trash_dir"))
	assert.Equal(t, "FMIGEN_SHELL", EnvVar("shell"))
}
