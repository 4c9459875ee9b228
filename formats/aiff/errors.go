// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	// ErrNotAiffFile indicates the input is not a readable AIFF stream.
	ErrNotAiffFile = errors.New("not an AIFF file")

	ErrUnsupportedBitDepth = errors.New("only 8-bit and 16-bit PCM AIFF supported")

	// ErrUnsupportedAiffLayout indicates a stream without usable format info.
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
