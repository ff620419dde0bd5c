package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesUnderBase(t *testing.T) {
	tmp := t.TempDir()

	got, err := EnsureDir(tmp, "exports")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "exports"), got)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()

	first, err := EnsureDir(tmp, "exports")
	require.NoError(t, err)
	second, err := EnsureDir(tmp, "exports")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureDir_AbsolutePath(t *testing.T) {
	tmp := t.TempDir()
	abs := filepath.Join(tmp, "nested", "exports")

	got, err := EnsureDir("ignored-base", abs)
	require.NoError(t, err)
	require.Equal(t, abs, got)
}

func TestEnsureDir_FailsOnFileCollision(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "exports"), []byte("x"), 0o660))

	_, err := EnsureDir(tmp, "exports")
	require.Error(t, err)
}
