// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
)

var errNegativeSeek = errors.New("audiotest: negative seek position")

// SeekBuffer is an in-memory io.ReadWriteSeeker. Encoders that patch their
// headers on Close need to seek back over already written bytes.
type SeekBuffer struct {
	data []byte
	pos  int64
}

func (b *SeekBuffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		b.data = append(b.data, make([]byte, end-int64(len(b.data)))...)
	}
	copy(b.data[b.pos:], p)
	b.pos = end

	return len(p), nil
}

func (b *SeekBuffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)

	return n, nil
}

func (b *SeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	}
	if pos < 0 {
		return 0, errNegativeSeek
	}
	b.pos = pos

	return pos, nil
}

// Bytes returns everything written so far.
func (b *SeekBuffer) Bytes() []byte { return b.data }
