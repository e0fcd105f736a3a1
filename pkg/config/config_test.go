package config_test

import (
	"testing"

	"github.com/itza2k/kore/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestGetString(t *testing.T) {
	cfg := config.New()
	t.Setenv("KORE_TEST_KEY", "value")
	assert.Equal(t, "value", cfg.GetString("KORE_TEST_KEY"))
	assert.Equal(t, "", cfg.GetString("KORE_TEST_UNSET"))
}

func TestGetStringOr(t *testing.T) {
	cfg := config.New()
	t.Setenv("KORE_TEST_KEY", "value")
	assert.Equal(t, "value", cfg.GetStringOr("KORE_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", cfg.GetStringOr("KORE_TEST_UNSET", "fallback"))
	t.Setenv("KORE_TEST_EMPTY", "")
	assert.Equal(t, "fallback", cfg.GetStringOr("KORE_TEST_EMPTY", "fallback"))
}
