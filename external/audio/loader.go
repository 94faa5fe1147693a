package audio

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/foxseedlab/adhan/internal/audio"
)

type FileLoader struct {
	encode func([][]int16) ([][]byte, error)
}

func NewFileLoader() audio.Loader {
	return &FileLoader{encode: encodeFrames}
}

func (l *FileLoader) Load(path string) (*audio.Asset, error) {
	streamer, format, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := streamer.Close(); cerr != nil {
			slog.Warn("failed to close audio stream", "error", cerr, "path", path)
		}
	}()

	pcm, err := readPCM(streamer, format.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("read pcm from %s: %w", path, err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("audio file %s has no samples", path)
	}
	logDecoded(path, format, pcm)

	frames, err := l.encode(splitFrames(pcm))
	if err != nil {
		return nil, err
	}
	asset := &audio.Asset{
		Name:          filepath.Base(path),
		Frames:        frames,
		FrameDuration: frameSizeMs * time.Millisecond,
	}
	slog.Info("announcement audio loaded", "path", path, "frames", len(frames), "duration", asset.Duration())
	return asset, nil
}
