//go:build opus

package audio

import (
	"fmt"

	"github.com/hraban/opus"
)

const maxOpusPacket = 4000

func encodeFrames(frames [][]int16) ([][]byte, error) {
	enc, err := opus.NewEncoder(sampleRate, channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}
	out := make([][]byte, 0, len(frames))
	buf := make([]byte, maxOpusPacket)
	for i, frame := range frames {
		n, err := enc.Encode(frame, buf)
		if err != nil {
			return nil, fmt.Errorf("encode frame %d: %w", i, err)
		}
		packet := make([]byte, n)
		copy(packet, buf[:n])
		out = append(out, packet)
	}
	return out, nil
}
