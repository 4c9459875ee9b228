// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrUnsupportedEncoding = errors.New("unsupported WAV encoding")
	ErrUnsupportedBitDepth = errors.New("only 8-bit and 16-bit PCM WAV supported")
	ErrNoPCMData           = errors.New("WAV data chunk not found")
)
