//go:build !opus

package audioconv

import (
	"errors"
	"io"
)

var ErrOpusUnsupported = errors.New("opus decoding needs the opus build tag")

func decodeOggOpus(io.ReadSeeker) ([]float32, error) {
	return nil, ErrOpusUnsupported
}
