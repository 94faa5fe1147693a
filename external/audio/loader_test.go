package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeToneWAV(t *testing.T, rate beep.SampleRate, samples int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	remaining := samples
	tone := beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if remaining == 0 {
			return 0, false
		}
		n := min(len(buf), remaining)
		for i := 0; i < n; i++ {
			buf[i][0], buf[i][1] = 0.5, -0.5
		}
		remaining -= n
		return n, true
	})
	require.NoError(t, wav.Encode(f, tone, beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}))
	return path
}

func TestSplitFrames_PadsLastFrame(t *testing.T) {
	pcm := make([]int16, samplesPerFrame*channels+10)
	for i := range pcm {
		pcm[i] = 7
	}
	frames := splitFrames(pcm)
	require.Len(t, frames, 2)
	assert.Len(t, frames[1], samplesPerFrame*channels)
	assert.Equal(t, int16(7), frames[1][9])
	assert.Equal(t, int16(0), frames[1][10])
}

func TestSplitFrames_Empty(t *testing.T) {
	assert.Empty(t, splitFrames(nil))
}

func TestFloatToPCM_Clamps(t *testing.T) {
	assert.Equal(t, int16(32767), floatToPCM(2))
	assert.Equal(t, int16(-32767), floatToPCM(-2))
	assert.Equal(t, int16(0), floatToPCM(0))
}

func TestFileLoader_ResamplesToFrames(t *testing.T) {
	path := writeToneWAV(t, 24000, 4800)
	var gotFrames [][]int16
	l := &FileLoader{encode: func(frames [][]int16) ([][]byte, error) {
		gotFrames = frames
		out := make([][]byte, len(frames))
		for i := range frames {
			out[i] = []byte{byte(i)}
		}
		return out, nil
	}}

	asset, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tone.wav", asset.Name)
	assert.Equal(t, 20*time.Millisecond, asset.FrameDuration)
	assert.InDelta(t, 10, len(asset.Frames), 1)
	require.NotEmpty(t, gotFrames)
	mid := gotFrames[len(gotFrames)/2]
	assert.Greater(t, mid[0], int16(0))
	assert.Less(t, mid[1], int16(0))
}

func TestFileLoader_MissingFile(t *testing.T) {
	l := &FileLoader{encode: encodeFrames}
	_, err := l.Load(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.Error(t, err)
}

func TestFileLoader_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not audio at all"), 0o600))
	l := &FileLoader{encode: encodeFrames}
	_, err := l.Load(path)
	assert.Error(t, err)
}
