package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedMap(t *testing.T) {
	Env = map[string]string{"FEEFOX_TEST_KEY": "from-file"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("FEEFOX_TEST_KEY", "from-os")

	assert.Equal(t, "from-file", GetEnv("FEEFOX_TEST_KEY", "def"))
	assert.Equal(t, "def", GetEnv("FEEFOX_MISSING_KEY", "def"))
}

func TestGetEnvFallsBackToOS(t *testing.T) {
	Env = nil
	t.Setenv("FEEFOX_TEST_KEY", "from-os")

	assert.Equal(t, "from-os", GetEnv("FEEFOX_TEST_KEY", "def"))
}

func TestGetEnvIntAndBool(t *testing.T) {
	Env = map[string]string{
		"INT_OK":   "42",
		"INT_BAD":  "forty-two",
		"BOOL_YES": "yes",
		"BOOL_0":   "0",
		"BOOL_BAD": "maybe",
	}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 42, GetEnvInt("INT_OK", 1))
	assert.Equal(t, 1, GetEnvInt("INT_BAD", 1))
	assert.Equal(t, 7, GetEnvInt("INT_MISSING", 7))
	assert.True(t, GetEnvBool("BOOL_YES", false))
	assert.False(t, GetEnvBool("BOOL_0", true))
	assert.True(t, GetEnvBool("BOOL_BAD", true))
}
