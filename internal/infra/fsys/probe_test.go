package fsys

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statErrFs 模擬 Stat 時發生 I/O 錯誤的文件系統
type statErrFs struct {
	afero.Fs
	err error
}

func (f statErrFs) Stat(name string) (os.FileInfo, error) {
	return nil, f.err
}

func TestProbe_Exists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/game/PvzRhFusion.exe", []byte("MZ"), 0o755))

	probe := NewProbe(fs)

	t.Run("文件存在", func(t *testing.T) {
		ok, err := probe.Exists("/data/game/PvzRhFusion.exe")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("文件不存在不報錯", func(t *testing.T) {
		ok, err := probe.Exists("/data/game/missing.exe")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("父目錄不存在不報錯", func(t *testing.T) {
		ok, err := probe.Exists("/nowhere/game/PvzRhFusion.exe")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestProbe_IOError(t *testing.T) {
	ioErr := errors.New("input/output error")
	probe := NewProbe(statErrFs{Fs: afero.NewMemMapFs(), err: ioErr})

	ok, err := probe.Exists("/data/game/PvzRhFusion.exe")
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ioErr))
}
