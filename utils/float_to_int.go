// SPDX-License-Identifier: EPL-2.0

package utils

// ScaleToInt converts a normalized sample in [-1, 1] to a signed integer of
// the given bit width. The scale is 1<<(bits-1) so that decoding and
// re-encoding an integer sample is lossless; positive overflow saturates.
func ScaleToInt(x float32, bits int) int32 {
	full := float32(int32(1) << (bits - 1))

	v := x * full
	if v >= full-1 {
		return int32(full) - 1
	}
	if v <= -full {
		return -int32(full)
	}

	return int32(v)
}
