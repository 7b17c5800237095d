package soft

import (
	"github.com/chewxy/math32"
	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/glm"
)

// ColorTexture stores rgba values as float32. Values are quantized to the
// precision of the texture format when written.
type ColorTexture struct {
	width  uint32
	height uint32
	format edl.ColorFormat

	pix []glm.Vec4f
}

func newColorTexture(width, height uint32, format edl.ColorFormat) *ColorTexture {
	return &ColorTexture{
		width:  width,
		height: height,
		format: format,
		pix:    make([]glm.Vec4f, width*height),
	}
}

func (t *ColorTexture) Width() uint32 {
	return t.width
}

func (t *ColorTexture) Height() uint32 {
	return t.height
}

func (t *ColorTexture) Format() edl.ColorFormat {
	return t.format
}

func (t *ColorTexture) At(x, y uint32) glm.Vec4f {
	return t.pix[y*t.width+x]
}

func (t *ColorTexture) Set(x, y uint32, value glm.Vec4f) {
	for idx := range value {
		value[idx] = quantize(t.format, value[idx])
	}

	t.pix[y*t.width+x] = value
}

func (t *ColorTexture) Fill(value glm.Vec4f) {
	for idx := range value {
		value[idx] = quantize(t.format, value[idx])
	}

	for idx := range t.pix {
		t.pix[idx] = value
	}
}

// Sample reads the texel at the uv coordinate with nearest filtering and
// clamp to edge addressing.
func (t *ColorTexture) Sample(uv glm.Vec2f) glm.Vec4f {
	x := texel(uv[0], t.width)
	y := texel(uv[1], t.height)
	return t.At(x, y)
}

func texel(coord float32, size uint32) uint32 {
	value := math32.Floor(coord * float32(size))
	return uint32(min(max(value, 0), float32(size-1)))
}

// DepthTexture stores unsigned integer depth values, 0 is the near plane.
type DepthTexture struct {
	width  uint32
	height uint32

	pix []uint32
}

func newDepthTexture(width, height uint32) *DepthTexture {
	return &DepthTexture{
		width:  width,
		height: height,
		pix:    make([]uint32, width*height),
	}
}

func (t *DepthTexture) Width() uint32 {
	return t.width
}

func (t *DepthTexture) Height() uint32 {
	return t.height
}

func (t *DepthTexture) At(x, y uint32) uint32 {
	return t.pix[y*t.width+x]
}

func (t *DepthTexture) Fill(value uint32) {
	for idx := range t.pix {
		t.pix[idx] = value
	}
}

func quantize(format edl.ColorFormat, value float32) float32 {
	switch format {
	case edl.ColorFormatFloat:
		return value

	case edl.ColorFormatHalfFloat:
		// keep 10 bits of mantissa, the range is not limited
		bits := math32.Float32bits(value)
		bits += 1 << 12
		bits &^= 1<<13 - 1
		return math32.Float32frombits(bits)

	default:
		return math32.Round(min(max(value, 0), 1)*255) / 255
	}
}

// depthToUint maps a normalized depth in [0, 1] to the full uint32 range.
func depthToUint(depth float64) uint32 {
	depth = min(max(depth, 0), 1)
	return uint32(depth*maxDepth + 0.5)
}

const maxDepth = float64(^uint32(0))
