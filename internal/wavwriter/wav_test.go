package wavwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	ww, err := New(path, 24000)
	require.NoError(t, err)
	require.NoError(t, ww.Write([]byte{0x80, 0xFF}))
	require.NoError(t, ww.Write(nil))
	require.NoError(t, ww.Write([]byte{0x00}))
	assert.Equal(t, 3, ww.Samples())
	require.NoError(t, ww.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	d := wav.NewDecoder(f)
	require.True(t, d.IsValidFile())
	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, 24000, buf.Format.SampleRate)
	assert.Equal(t, 1, buf.Format.NumChannels)
	assert.Equal(t, []int{0, 0x7F00, -0x8000}, buf.Data)
}

func TestNewBadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "out.wav"), 24000)
	assert.Error(t, err)
}
