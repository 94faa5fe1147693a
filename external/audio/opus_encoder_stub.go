//go:build !opus

package audio

import "errors"

var errOpusUnavailable = errors.New("opus encoding requires building with -tags opus")

func encodeFrames(_ [][]int16) ([][]byte, error) {
	return nil, errOpusUnavailable
}
