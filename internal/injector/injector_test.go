package injector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/barrage/internal/core/config"
)

func TestInitializeWorldDefaults(t *testing.T) {
	w, err := InitializeWorld("")
	require.NoError(t, err)
	defer w.Close()

	require.Equal(t, config.Default().Arena.Capacity, w.Arena().Capacity())
	_, err = w.Step()
	require.NoError(t, err)
}

func TestInitializeWorldFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barrage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arena:\n  capacity: 128\nlog:\n  level: warn\n"), 0o644))

	w, err := InitializeWorld(path)
	require.NoError(t, err)
	defer w.Close()
	require.Equal(t, 128, w.Arena().Capacity())
}

func TestInitializeWorldErrors(t *testing.T) {
	_, err := InitializeWorld(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: chatty\n"), 0o644))
	_, err = InitializeWorld(path)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}
