// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	ErrNilCallback = errors.New("device opened without a callback")
	ErrNoFormat    = errors.New("sink accepted none of the fallback formats")
	ErrSink        = errors.New("audio sink failure")
	ErrSinkClosed  = errors.New("audio sink closed")
)
