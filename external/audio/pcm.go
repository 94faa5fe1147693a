package audio

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

const (
	sampleRate      = 48000
	channels        = 2
	frameSizeMs     = 20
	samplesPerFrame = sampleRate * frameSizeMs / 1000
	resampleQuality = 3
	streamChunk     = 4096
)

func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	streamer, format, err := mp3.Decode(f)
	if err == nil {
		return streamer, format, nil
	}
	_ = f.Close()

	f, err = os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	streamer, format, err = wav.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: not an mp3 or wav file: %w", path, err)
	}
	return streamer, format, nil
}

// readPCM drains s into interleaved 16-bit stereo samples at 48kHz.
func readPCM(s beep.Streamer, from beep.SampleRate) ([]int16, error) {
	var src beep.Streamer = s
	if from != beep.SampleRate(sampleRate) {
		src = beep.Resample(resampleQuality, from, beep.SampleRate(sampleRate), s)
	}
	buf := make([][2]float64, streamChunk)
	pcm := make([]int16, 0, streamChunk*channels)
	for {
		n, ok := src.Stream(buf)
		for i := 0; i < n; i++ {
			pcm = append(pcm, floatToPCM(buf[i][0]), floatToPCM(buf[i][1]))
		}
		if !ok {
			break
		}
	}
	if err := src.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return pcm, nil
}

func floatToPCM(v float64) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

// splitFrames cuts interleaved pcm into 20ms stereo frames, zero-padding the last one.
func splitFrames(pcm []int16) [][]int16 {
	size := samplesPerFrame * channels
	frames := make([][]int16, 0, (len(pcm)+size-1)/size)
	for start := 0; start < len(pcm); start += size {
		frame := make([]int16, size)
		copy(frame, pcm[start:min(start+size, len(pcm))])
		frames = append(frames, frame)
	}
	return frames
}

func logDecoded(path string, format beep.Format, pcm []int16) {
	slog.Debug("audio decoded",
		"path", path,
		"source_sample_rate", int(format.SampleRate),
		"source_channels", format.NumChannels,
		"samples", len(pcm)/channels,
	)
}
