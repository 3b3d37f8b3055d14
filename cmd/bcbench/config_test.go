package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bcbench.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig([]string{"--workers", "4"})
	require.NoError(t, err)

	want := DefaultConfig()
	want.Workers = 4
	want.Seed = cfg.Seed // time based
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

// A JSONC file with comments and trailing commas is accepted, and explicit
// flags win over it.
func TestLoadConfig_FileThenFlags(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{
		// small cache, many buckets
		"slots": 64,
		"buckets": 16,
		"policy": "lru",
		"workers": 8,
		"duration": "2s",
		"seed": 7,
	}`)

	cfg, err := LoadConfig([]string{"--config", path, "--buckets", "4", "--writes=50"})
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Slots)
	require.Equal(t, 4, cfg.Buckets)
	require.Equal(t, "lru", cfg.Policy)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, 50, cfg.WritePct)
	require.Equal(t, "2s", cfg.Duration)
	require.EqualValues(t, 7, cfg.Seed)
	require.Equal(t, DefaultConfig().BlockSize, cfg.BlockSize)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"workers >= slots": {"--slots", "4", "--workers", "4"},
		"bad policy":       {"--workers", "1", "--policy", "clock"},
		"bad duration":     {"--workers", "1", "--duration", "soon"},
		"bad zipf":         {"--workers", "1", "--zipf-s", "1"},
		"bad level":        {"--workers", "1", "--log-level", "loud"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadConfig(args)
			require.ErrorIs(t, err, errConfigInvalid)
		})
	}

	_, err := LoadConfig([]string{"--config", writeConfig(t, `{"slots": `)})
	require.ErrorIs(t, err, errConfigInvalid)
}
