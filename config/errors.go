// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrLoad         = errors.New("failed to read configuration")
	ErrInvalidValue = errors.New("invalid configuration value")
	ErrUnknownSink  = errors.New("unknown sink")
)
