// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"testing"
	"time"
)

func TestFormat_Layout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format    Format
		bits      int
		signed    bool
		bigEndian bool
		silence   byte
	}{
		{U8, 8, false, false, 0x80},
		{S8, 8, true, false, 0},
		{U16LSB, 16, false, false, 0},
		{S16LSB, 16, true, false, 0},
		{U16MSB, 16, false, true, 0},
		{S16MSB, 16, true, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			t.Parallel()

			if !tt.format.Valid() {
				t.Fatalf("%s.Valid() = false", tt.format)
			}
			if got := tt.format.BitSize(); got != tt.bits {
				t.Errorf("BitSize() = %d, want %d", got, tt.bits)
			}
			if got := tt.format.Signed(); got != tt.signed {
				t.Errorf("Signed() = %v, want %v", got, tt.signed)
			}
			if got := tt.format.BigEndian(); got != tt.bigEndian {
				t.Errorf("BigEndian() = %v, want %v", got, tt.bigEndian)
			}
			if got := tt.format.Silence(); got != tt.silence {
				t.Errorf("Silence() = %#x, want %#x", got, tt.silence)
			}
			if fb := tt.format.Fallbacks(); len(fb) != 6 || fb[0] != tt.format {
				t.Errorf("Fallbacks() = %v, want 6 entries starting with %s", fb, tt.format)
			}
		})
	}
}

func TestFormat_Invalid(t *testing.T) {
	t.Parallel()

	f := Format(0x0020)
	if f.Valid() {
		t.Error("Format(0x0020).Valid() = true, want false")
	}
	if f.Fallbacks() != nil {
		t.Error("Fallbacks() of an invalid format should be nil")
	}
	if got := f.String(); got != "Format(0x0020)" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"u8", U8},
		{"S8", S8},
		{"s16", S16LSB},
		{" S16MSB ", S16MSB},
		{"U16", U16LSB},
		{"u16msb", U16MSB},
		{"S16SYS", S16SYS},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := ParseFormat("F32"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(F32) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSpec_Calculate(t *testing.T) {
	t.Parallel()

	s := Spec{Freq: 22050, Format: U8, Channels: 2, Samples: 1024}
	s.Calculate()

	if s.Silence != 0x80 {
		t.Errorf("Silence = %#x, want 0x80", s.Silence)
	}
	if s.Size != 2048 {
		t.Errorf("Size = %d, want 2048", s.Size)
	}

	s.Format = S16LSB
	s.Calculate()
	if s.Size != 4096 || s.Silence != 0 {
		t.Errorf("S16 Size = %d Silence = %#x, want 4096 and 0", s.Size, s.Silence)
	}
	if s.FrameSize() != 4 {
		t.Errorf("FrameSize() = %d, want 4", s.FrameSize())
	}
}

func TestSpec_Period(t *testing.T) {
	t.Parallel()

	s := Spec{Freq: 1000, Samples: 500}
	if got := s.Period(); got != 500*time.Millisecond {
		t.Errorf("Period() = %v, want 500ms", got)
	}
}

func TestSpec_Validate(t *testing.T) {
	t.Parallel()

	valid := Spec{Freq: 44100, Format: S16LSB, Channels: 2, Samples: 512}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Spec)
		want   error
	}{
		{"zero frequency", func(s *Spec) { s.Freq = 0 }, ErrInvalidFrequency},
		{"bad format", func(s *Spec) { s.Format = 0x20 }, ErrUnsupportedFormat},
		{"three channels", func(s *Spec) { s.Channels = 3 }, ErrInvalidChannels},
		{"eight channels", func(s *Spec) { s.Channels = 8 }, ErrInvalidChannels},
		{"no samples", func(s *Spec) { s.Samples = 0 }, ErrInvalidSamples},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := valid
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}
