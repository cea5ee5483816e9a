package convert

// ColorMatrix selects the YUV<->RGB coefficient family (spec §4.3.2).
type ColorMatrix int

const (
	BT601 ColorMatrix = iota
	BT709
)

// Range selects video-range (16-235) vs. full-range (0-255) luma.
type Range int

const (
	VideoRange Range = iota
	FullRange
)

// Flag bundles a ColorMatrix and a Range, mirroring the spec's
// ConvertFlag = {BT601|BT709, FullRange|VideoRange, Default=BT601|VideoRange}.
type Flag struct {
	Matrix ColorMatrix
	Range  Range
}

// DefaultFlag is BT601|VideoRange, per spec §4.3.2.
var DefaultFlag = Flag{Matrix: BT601, Range: VideoRange}

// coeffs holds the fixed-point (x64) YUV->RGB coefficients for one
// (matrix, range) combination, exactly the normative table in spec §4.3.2.
type coeffs struct {
	Cy, Cr, Cgu, Cgv, Cb int32
	YOffset              int32
}

var coefficientTable = map[Flag]coeffs{
	{BT601, FullRange}:  {Cy: 64, Cr: 88, Cgu: 22, Cgv: 45, Cb: 111, YOffset: 0},
	{BT601, VideoRange}: {Cy: 75, Cr: 102, Cgu: 25, Cgv: 52, Cb: 129, YOffset: 16},
	{BT709, FullRange}:  {Cy: 64, Cr: 101, Cgu: 12, Cgv: 30, Cb: 119, YOffset: 0},
	{BT709, VideoRange}: {Cy: 75, Cr: 115, Cgu: 14, Cgv: 34, Cb: 135, YOffset: 16},
}

// coefficientsFor looks up the fixed-point table, hoisted once per frame
// (spec §9 "avoid per-pixel branching... selecting the coefficient set
// once per frame") rather than re-derived per pixel.
func coefficientsFor(flag Flag) coeffs {
	return coefficientTable[flag]
}

func clamp255(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// yuvToRGB applies the spec §4.3.2 formula to one pixel's Y/U/V sample and
// returns R, G, B with the (sum+32)>>6 rounding and clamping baked in.
func yuvToRGB(c coeffs, y, u, v int32) (r, g, b uint8) {
	yy := y - c.YOffset
	uu := u - 128
	vv := v - 128

	r = clamp255((c.Cy*yy + c.Cr*vv + 32) >> 6)
	g = clamp255((c.Cy*yy - c.Cgu*uu - c.Cgv*vv + 32) >> 6)
	b = clamp255((c.Cy*yy + c.Cb*uu + 32) >> 6)
	return
}
