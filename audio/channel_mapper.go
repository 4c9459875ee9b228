// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMapper converts a Source to a different channel count.
//
// Downmixing averages every source channel i into output channel i%out, so
// stereo to mono averages L and R and 5.1 to stereo folds the rear and
// center/LFE pairs into the fronts. Upmixing copies mono to every output,
// repeats the front pair on the rears, and feeds the center from the
// average of the front pair. The LFE output of an upmix is silent.
type ChannelMapper struct {
	src Source
	out int
	tmp []float32
}

func NewChannelMapper(src Source, channels int) *ChannelMapper {
	return &ChannelMapper{
		src: src,
		out: channels,
		tmp: make([]float32, 4096),
	}
}

func (m *ChannelMapper) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMapper) Channels() int   { return m.out }
func (m *ChannelMapper) BufSize() int    { return m.src.BufSize() }
func (m *ChannelMapper) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("closing source: %w", err)
	}

	return nil
}

func (m *ChannelMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	in := m.src.Channels()
	if in == m.out {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.out
	needed := frames * in

	// Grow but never shrink the scratch buffer.
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, max(needed, 8192))
	}
	m.tmp = m.tmp[:needed]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / in

	if in > m.out {
		m.downmix(dst, frames, in)
	} else {
		m.upmix(dst, frames, in)
	}

	return frames * m.out, err
}

func (m *ChannelMapper) downmix(dst []float32, frames, in int) {
	switch {
	case in == 2 && m.out == 1:
		for f := range frames {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	case in == 4 && m.out == 1:
		for f := range frames {
			idx := f << 2
			dst[f] = (m.tmp[idx] + m.tmp[idx+1] + m.tmp[idx+2] + m.tmp[idx+3]) * 0.25
		}
	default:
		for f := range frames {
			base := f * in
			out := dst[f*m.out : (f+1)*m.out]
			clear(out)
			for c := range in {
				out[c%m.out] += m.tmp[base+c]
			}
			for c := range out {
				// Output c receives ceil((in-c)/out) inputs.
				out[c] /= float32((in - c + m.out - 1) / m.out)
			}
		}
	}
}

func (m *ChannelMapper) upmix(dst []float32, frames, in int) {
	for f := range frames {
		src := m.tmp[f*in : (f+1)*in]
		out := dst[f*m.out : (f+1)*m.out]

		if in == 1 {
			for c := range out {
				out[c] = src[0]
			}
			continue
		}

		for c := range out {
			switch {
			case c < in:
				out[c] = src[c]
			case c < 4:
				out[c] = src[c%2]
			case c == 4:
				out[c] = (src[0] + src[1]) * 0.5
			default:
				out[c] = 0
			}
		}
	}
}
