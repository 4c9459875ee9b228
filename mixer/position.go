// SPDX-License-Identifier: EPL-2.0

package mixer

import "github.com/ik5/audmix/audio"

// Speaker slots of position gains, in output channel order.
const (
	spkLeft = iota
	spkRight
	spkLeftRear
	spkRightRear
	spkCenter
	spkLFE
	speakers
)

// position is the state behind the built-in position effect of one
// channel. Gains and distance run 0..255 where 255 is unattenuated.
type position struct {
	gains     [speakers]uint8
	distance  uint8
	roomAngle int
	id        EffectID
}

func newPosition() *position {
	p := &position{distance: 255}
	for i := range p.gains {
		p.gains[i] = 255
	}

	return p
}

// Output orderings for surround layouts when the listener faces each
// quadrant.
var surroundOrder = map[int][4]int{
	0:   {0, 1, 2, 3},
	90:  {1, 3, 0, 2},
	180: {3, 2, 1, 0},
	270: {2, 0, 3, 1},
}

func (p *position) apply(buf []byte, codec audio.Codec, channels int) {
	dist := float32(p.distance) / 255

	var gain [speakers]float32
	for i, g := range p.gains {
		gain[i] = float32(g) / 255
	}
	if channels == 1 {
		gain[spkLeft] = 1
	}

	var in [speakers]int32
	frames := len(buf) / (codec.Size() * channels)
	for f := range frames {
		base := f * channels
		for c := range channels {
			in[c] = int32(float32(codec.Get(buf, base+c)) * gain[c] * dist)
		}

		switch channels {
		case 1:
			codec.Put(buf, base, in[0])
		case 2:
			if p.roomAngle == 180 {
				in[0], in[1] = in[1], in[0]
			}
			codec.Put(buf, base, in[0])
			codec.Put(buf, base+1, in[1])
		case 4, 6:
			order := surroundOrder[p.roomAngle]
			for c, src := range order {
				codec.Put(buf, base+c, in[src])
			}
			if channels == 6 {
				codec.Put(buf, base+spkCenter, p.center(in))
				codec.Put(buf, base+spkLFE, in[spkLFE])
			}
		}
	}
}

// center folds the two speakers nearest the source into the center channel
// once the listener has turned away from it.
func (p *position) center(in [speakers]int32) int32 {
	switch p.roomAngle {
	case 90:
		return in[spkRight]/2 + in[spkRightRear]/2
	case 180:
		return in[spkRightRear]/2 + in[spkLeftRear]/2
	case 270:
		return in[spkLeft]/2 + in[spkLeftRear]/2
	}

	return in[spkCenter]
}

// applyTable is the 8-bit path used when lookup tables are enabled. Every
// sample goes through the gain row and then the distance row.
func (p *position) applyTable(buf []byte, codec audio.Codec, channels int, tab *[256][256]int8) {
	dist := &tab[p.distance]
	left, right := &tab[p.gains[spkLeft]], &tab[p.gains[spkRight]]

	scale := func(row *[256]int8, v int32) int32 {
		return int32(dist[int(row[v+128])+128])
	}

	for i := 0; i+channels <= len(buf); i += channels {
		l := scale(left, codec.Get(buf, i))
		if channels == 1 {
			codec.Put(buf, i, l)
			continue
		}
		r := scale(right, codec.Get(buf, i+1))
		if p.roomAngle == 180 {
			l, r = r, l
		}
		codec.Put(buf, i, l)
		codec.Put(buf, i+1, r)
	}
}

// volumeTable maps [volume][sample+128] to the scaled signed sample.
func (e *Engine) volumeTable() *[256][256]int8 {
	if e.volTable == nil {
		t := new([256][256]int8)
		for vol := range 256 {
			for s := -128; s < 128; s++ {
				t[vol][s+128] = int8(float64(s) * (float64(vol) / 255.0))
			}
		}
		e.volTable = t
	}

	return e.volTable
}

func (e *Engine) positionEffect(p *position) EffectFunc {
	codec := e.codec
	channels := e.spec.Channels

	if e.tables && codec.Size() == 1 && channels <= 2 {
		tab := e.volumeTable()
		return func(_ int, buf []byte) { p.applyTable(buf, codec, channels, tab) }
	}

	return func(_ int, buf []byte) { p.apply(buf, codec, channels) }
}

func (e *Engine) positionFor(ch int) (*position, error) {
	if _, err := e.chain(ch); err != nil {
		return nil, err
	}
	p, ok := e.positions[ch]
	if !ok {
		p = newPosition()
		e.positions[ch] = p
	}

	return p, nil
}

// enablePosition registers the effect for p unless it already runs.
func (e *Engine) enablePosition(ch int, p *position) error {
	if p.id != 0 {
		return nil
	}

	id, err := e.registerLocked(ch, e.positionEffect(p), func(ch int) {
		if e.positions[ch] == p {
			delete(e.positions, ch)
		}
	})
	if err != nil {
		return err
	}
	p.id = id

	return nil
}

// disablePosition drops the effect when the settings are back to neutral.
func (e *Engine) disablePosition(ch int, p *position) error {
	if p.id == 0 {
		return nil
	}

	return e.unregisterLocked(ch, p.id)
}

// SetPanning attenuates the left and right speakers of ch, 255 being
// unattenuated. On surround output it maps to an angle instead. Mono output
// ignores it. Full volume on both sides with no distance removes the
// effect.
func (e *Engine) SetPanning(ch int, left, right uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return ErrAudioNotOpen
	}

	switch e.spec.Channels {
	case 2:
	case 4, 6:
		angle := 0
		if left != 255 || right != 255 {
			angle = -(127 - int(left))
			angle = angle * 90 / 128
		}
		return e.setPositionLocked(ch, angle, 0)
	default:
		return nil
	}

	p, err := e.positionFor(ch)
	if err != nil {
		return err
	}

	if p.distance == 255 && left == 255 && right == 255 {
		return e.disablePosition(ch, p)
	}

	p.gains[spkLeft] = left
	p.gains[spkRight] = right
	p.roomAngle = 0

	return e.enablePosition(ch, p)
}

// SetDistance attenuates ch by distance, 0 being closest and 255 farthest.
func (e *Engine) SetDistance(ch int, distance uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return ErrAudioNotOpen
	}

	p, err := e.positionFor(ch)
	if err != nil {
		return err
	}

	distance = 255 - distance
	if distance == 255 && p.gains[spkLeft] == 255 && p.gains[spkRight] == 255 {
		return e.disablePosition(ch, p)
	}

	p.distance = distance

	return e.enablePosition(ch, p)
}

// SetPosition places ch at angle degrees clockwise from straight ahead and
// at distance. Angle 0 with distance 0 removes the effect.
func (e *Engine) SetPosition(ch, angle int, distance uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return ErrAudioNotOpen
	}

	return e.setPositionLocked(ch, angle, distance)
}

func (e *Engine) setPositionLocked(ch, angle int, distance uint8) error {
	angle %= 360
	if angle < 0 {
		angle += 360
	}

	p, err := e.positionFor(ch)
	if err != nil {
		return err
	}

	if distance == 0 && angle == 0 {
		return e.disablePosition(ch, p)
	}

	channels := e.spec.Channels
	room := 0
	switch channels {
	case 2:
		if angle > 180 {
			room = 180
		}
	case 4, 6:
		switch {
		case angle > 315:
			room = 0
		case angle > 225:
			room = 270
		case angle > 135:
			room = 180
		case angle > 45:
			room = 90
		}
	}

	p.gains = amplitudes(channels, angle, room)
	p.distance = 255 - distance
	p.roomAngle = room

	return e.enablePosition(ch, p)
}

func ramp(num int, den float32) int {
	return int(255 * (float32(num) / den))
}

// amplitudes computes per-speaker gains for a source at angle when the
// listener faces room. On stereo a source only attenuates the far side.
func amplitudes(channels, angle, room int) [speakers]uint8 {
	left, right := 255, 255
	leftRear, rightRear, center := 255, 255, 255

	switch channels {
	case 2:
		switch {
		case angle < 90:
			left = 255 - ramp(angle, 89)
		case angle < 180:
			left = ramp(angle-90, 89)
		case angle < 270:
			right = 255 - ramp(angle-180, 89)
		default:
			right = ramp(angle-270, 89)
		}
	case 4, 6:
		switch {
		case angle < 45:
			left = ramp(180-angle, 179)
			leftRear = 255 - ramp(angle+45, 89)
			rightRear = 255 - ramp(90-angle, 179)
		case angle < 90:
			center = ramp(225-angle, 179)
			left = ramp(180-angle, 179)
			leftRear = 255 - ramp(135-angle, 89)
			rightRear = ramp(90+angle, 179)
		case angle < 135:
			center = ramp(225-angle, 179)
			left = 255 - ramp(angle-45, 89)
			right = ramp(270-angle, 179)
			leftRear = ramp(angle, 179)
		case angle < 180:
			center = 255 - ramp(angle-90, 89)
			left = 255 - ramp(225-angle, 89)
			right = ramp(270-angle, 179)
			leftRear = ramp(angle, 179)
		case angle < 225:
			center = 255 - ramp(270-angle, 89)
			left = ramp(angle-90, 179)
			right = 255 - ramp(angle-135, 89)
			rightRear = ramp(360-angle, 179)
		case angle < 270:
			center = ramp(angle-135, 179)
			left = ramp(angle-90, 179)
			right = 255 - ramp(315-angle, 89)
			rightRear = ramp(360-angle, 179)
		case angle < 315:
			center = ramp(angle-135, 179)
			right = ramp(angle-180, 179)
			leftRear = ramp(450-angle, 179)
			rightRear = 255 - ramp(angle-225, 89)
		default:
			right = ramp(angle-180, 179)
			leftRear = ramp(450-angle, 179)
			rightRear = 255 - ramp(405-angle, 89)
		}
	}

	c := func(v int) uint8 { return uint8(min(max(v, 0), 255)) }
	l, r, lr, rr := c(left), c(right), c(leftRear), c(rightRear)

	var g [speakers]uint8
	switch {
	case room == 90:
		g[0], g[1], g[2], g[3] = lr, l, rr, r
	case room == 180 && channels == 2:
		g[0], g[1] = r, l
	case room == 180:
		g[0], g[1], g[2], g[3] = rr, lr, r, l
	case room == 270:
		g[0], g[1], g[2], g[3] = r, rr, l, lr
	default:
		g[0], g[1], g[2], g[3] = l, r, lr, rr
	}
	g[spkCenter] = c(center)
	g[spkLFE] = 255

	return g
}

// SetReverseStereo swaps left and right of ch on stereo output. Other
// layouts ignore it.
func (e *Engine) SetReverseStereo(ch int, flip bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened == 0 {
		return ErrAudioNotOpen
	}
	if e.spec.Channels != 2 {
		return nil
	}
	if _, err := e.chain(ch); err != nil {
		return err
	}

	id, on := e.reversed[ch]
	if !flip {
		if !on {
			return ErrEffectNotFound
		}
		return e.unregisterLocked(ch, id)
	}
	if on {
		return nil
	}

	size := e.codec.Size()
	id, err := e.registerLocked(ch, func(_ int, buf []byte) { reverseStereo(buf, size) }, func(ch int) {
		if e.reversed[ch] == id {
			delete(e.reversed, ch)
		}
	})
	if err != nil {
		return err
	}
	e.reversed[ch] = id

	return nil
}

func reverseStereo(buf []byte, size int) {
	frame := 2 * size
	for i := 0; i+frame <= len(buf); i += frame {
		for j := range size {
			buf[i+j], buf[i+size+j] = buf[i+size+j], buf[i+j]
		}
	}
}
