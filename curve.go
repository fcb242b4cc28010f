package particles

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// CurveResolution is the sample count of each baked curve channel.
const CurveResolution = 256

// CurveChannels is the number of channels packed into one CurveTable.
const CurveChannels = 4

// Baked curve channels, in interleave order.
const (
	ChannelSize = iota
	ChannelOpacity
	ChannelVelocity
	ChannelRotationSpeed
)

// Channel-active bitmask bits carried by the curve binary format.
const (
	MaskSize          = 1 << ChannelSize
	MaskOpacity       = 1 << ChannelOpacity
	MaskVelocity      = 1 << ChannelVelocity
	MaskRotationSpeed = 1 << ChannelRotationSpeed
)

// curveMagic identifies the headered curve binary format. Stored as the raw
// bits of the first float word.
const curveMagic uint32 = 0x70637631 // "pcv1"

// ErrCurveDataSize is returned when a curve blob matches neither the
// headered nor the legacy layout. Callers fall back to baking from curve
// properties.
var ErrCurveDataSize = errors.New("particles: curve data size mismatch")

// CurvePoint is one control point of an editable curve. In and Out are
// Bezier handle offsets relative to the point; zero handles degrade the
// segment toward a straight line.
type CurvePoint struct {
	X    float32 `yaml:"x"`
	Y    float32 `yaml:"y"`
	InX  float32 `yaml:"inX"`
	InY  float32 `yaml:"inY"`
	OutX float32 `yaml:"outX"`
	OutY float32 `yaml:"outY"`
}

// Curve is an editable spline over x in [0, 1], defined by control points
// sorted by X.
type Curve struct {
	Points []CurvePoint `yaml:"points"`
}

// Valid reports whether the curve has enough well-formed points to sample.
func (c *Curve) Valid() bool {
	if c == nil || len(c.Points) < 2 {
		return false
	}
	for _, p := range c.Points {
		if math.IsNaN(float64(p.X)) || math.IsNaN(float64(p.Y)) {
			return false
		}
	}
	return true
}

// SampleCurveAt evaluates the curve at x. The segment bracketing x is
// located, then the cubic Bezier parameter t whose x-coordinate matches is
// found by 20 bisection iterations (tolerance 1e-4), and the curve value at
// that t is returned clamped to [-0.5, 1.5]. Overshoot within that window is
// allowed so elastic/bounce-style curves survive baking.
//
// Degenerate input (fewer than 2 points, malformed data, x outside the
// point span) yields the default linear fade 1-x rather than an error.
func SampleCurveAt(x float32, points []CurvePoint) float32 {
	if len(points) < 2 {
		return defaultCurveValue(x)
	}
	if x <= points[0].X {
		return clamp32(points[0].Y, -0.5, 1.5)
	}
	last := points[len(points)-1]
	if x >= last.X {
		return clamp32(last.Y, -0.5, 1.5)
	}

	// Locate the bracketing segment.
	seg := -1
	for i := 0; i < len(points)-1; i++ {
		if x >= points[i].X && x <= points[i+1].X {
			seg = i
			break
		}
	}
	if seg < 0 {
		return defaultCurveValue(x)
	}

	p0 := points[seg]
	p1 := points[seg+1]
	c0x := p0.X + p0.OutX
	c0y := p0.Y + p0.OutY
	c1x := p1.X + p1.InX
	c1y := p1.Y + p1.InY

	// Bisect for the Bezier parameter whose x matches.
	lo, hi := float32(0), float32(1)
	t := float32(0.5)
	for i := 0; i < 20; i++ {
		bx := cubicBezier(p0.X, c0x, c1x, p1.X, t)
		d := bx - x
		if abs32(d) < 1e-4 {
			break
		}
		if d > 0 {
			hi = t
		} else {
			lo = t
		}
		t = (lo + hi) * 0.5
	}

	y := cubicBezier(p0.Y, c0y, c1y, p1.Y, t)
	return clamp32(y, -0.5, 1.5)
}

// cubicBezier evaluates a 1-D cubic Bezier with endpoints a, d and control
// values b, c at parameter t.
func cubicBezier(a, b, c, d, t float32) float32 {
	mt := 1 - t
	return mt*mt*mt*a + 3*mt*mt*t*b + 3*mt*t*t*c + t*t*t*d
}

// defaultCurveValue is the fallback curve: a linear 1→0 fade.
func defaultCurveValue(x float32) float32 {
	return 1 - x
}

// BakeToArray samples a curve into a lookup array of the given resolution.
// Sample i is taken at x = i/(resolution-1). A nil or degenerate curve bakes
// to the default linear fade.
func BakeToArray(c *Curve, resolution int) []float32 {
	if resolution < 2 {
		resolution = CurveResolution
	}
	out := make([]float32, resolution)
	valid := c.Valid()
	for i := range out {
		x := float32(i) / float32(resolution-1)
		if valid {
			out[i] = SampleCurveAt(x, c.Points)
		} else {
			out[i] = defaultCurveValue(x)
		}
	}
	return out
}

// CurveTable is the baked, fixed-resolution lookup table consumed by both
// executors: four channels (size, opacity, velocity, rotation speed)
// interleaved per sample. Mask records which channels were baked from a real
// curve; unset channels hold the default fade and callers fall back to
// prop-driven values for them.
type CurveTable struct {
	Data [CurveResolution * CurveChannels]float32
	Mask uint32
}

// BuildCombinedTable bakes up to four independent curves into one
// interleaved table. Nil curves contribute the default linear fade and leave
// their mask bit clear.
func BuildCombinedTable(size, opacity, velocity, rotationSpeed *Curve) *CurveTable {
	t := &CurveTable{}
	channels := [CurveChannels]*Curve{size, opacity, velocity, rotationSpeed}
	for ch, c := range channels {
		baked := BakeToArray(c, CurveResolution)
		for i := 0; i < CurveResolution; i++ {
			t.Data[i*CurveChannels+ch] = baked[i]
		}
		if c.Valid() {
			t.Mask |= 1 << ch
		}
	}
	return t
}

// Active reports whether the given channel was baked from a real curve.
func (t *CurveTable) Active(channel int) bool {
	return t != nil && t.Mask&(1<<channel) != 0
}

// Sample returns the channel value at progress x in [0, 1], linearly
// interpolated between adjacent samples. Both executors use this exact
// arithmetic.
func (t *CurveTable) Sample(channel int, x float32) float32 {
	fx := clamp32(x, 0, 1) * float32(CurveResolution-1)
	i0 := int(fx)
	if i0 >= CurveResolution-1 {
		return t.Data[(CurveResolution-1)*CurveChannels+channel]
	}
	f := fx - float32(i0)
	a := t.Data[i0*CurveChannels+channel]
	b := t.Data[(i0+1)*CurveChannels+channel]
	return a + (b-a)*f
}

// Binary layout sizes in bytes.
const (
	curveHeaderWords = 4 // magic, mask, two reserved
	curveTableWords  = CurveResolution * CurveChannels
	curveHeaderBytes = curveHeaderWords * 4
	curveTableBytes  = curveTableWords * 4
)

// MarshalBinary encodes the table as the headered curve blob:
// [magic][mask][reserved][reserved] followed by the interleaved samples,
// all as little-endian 32-bit words.
func (t *CurveTable) MarshalBinary() ([]byte, error) {
	buf := make([]byte, curveHeaderBytes+curveTableBytes)
	binary.LittleEndian.PutUint32(buf[0:], curveMagic)
	binary.LittleEndian.PutUint32(buf[4:], t.Mask)
	for i, v := range t.Data {
		binary.LittleEndian.PutUint32(buf[curveHeaderBytes+i*4:], math.Float32bits(v))
	}
	return buf, nil
}

// DecodeCurveTable parses a curve blob. Two layouts are accepted:
//
//   - headered: 4 header words (magic, channel mask, 2 reserved) followed by
//     the 256×4 interleaved sample block;
//   - legacy: the bare sample block with no header, detected by its exact
//     length, with all four channels treated as active.
//
// Any other length returns ErrCurveDataSize so the caller can fall back to
// baking from curve properties.
func DecodeCurveTable(data []byte) (*CurveTable, error) {
	t := &CurveTable{}
	var body []byte
	switch len(data) {
	case curveHeaderBytes + curveTableBytes:
		if magic := binary.LittleEndian.Uint32(data[0:]); magic != curveMagic {
			return nil, fmt.Errorf("particles: bad curve magic %#x", magic)
		}
		t.Mask = binary.LittleEndian.Uint32(data[4:])
		body = data[curveHeaderBytes:]
	case curveTableBytes:
		// Legacy header-less blob.
		t.Mask = MaskSize | MaskOpacity | MaskVelocity | MaskRotationSpeed
		body = data
	default:
		return nil, fmt.Errorf("%w: got %d bytes", ErrCurveDataSize, len(data))
	}
	for i := range t.Data {
		t.Data[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:]))
	}
	return t, nil
}
