package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioc/CaDrA/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "ks", cfg.Search.DefaultMethod)
	assert.Equal(t, 1000, cfg.Permutation.DefaultNumShuffles)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoad_RejectsInvalidNCores(t *testing.T) {
	os.Setenv("CADRA_NCORES", "0")
	defer os.Unsetenv("CADRA_NCORES")

	_, err := config.Load()
	assert.Error(t, err)
}
