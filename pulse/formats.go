package pulse

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/edlview/edl"
)

// webgpu requires the rows of a texture to buffer copy to be aligned
const copyBytesPerRowAlignment = 256

// default of maxTextureDimension2D, every adapter supports at least this
const maxTextureSize = 8192

func colorFormatOf(format edl.ColorFormat) (wgpu.TextureFormat, error) {
	switch format {
	case edl.ColorFormatDefault:
		return wgpu.TextureFormatRGBA8Unorm, nil
	case edl.ColorFormatHalfFloat:
		return wgpu.TextureFormatRGBA16Float, nil
	case edl.ColorFormatFloat:
		return wgpu.TextureFormatRGBA32Float, nil
	default:
		return wgpu.TextureFormatUndefined, fmt.Errorf("unknown color format %d", format)
	}
}

// depthFormatOf maps the depth format of a target. There is no unsigned
// integer depth format in webgpu, the 24 bit format carries a stencil
// aspect like the regular target expects.
func depthFormatOf(format edl.DepthFormat) (wgpu.TextureFormat, error) {
	switch format {
	case edl.DepthNone:
		return wgpu.TextureFormatUndefined, nil
	case edl.DepthUint:
		return wgpu.TextureFormatDepth24PlusStencil8, nil
	case edl.DepthFloat:
		return wgpu.TextureFormatDepth32Float, nil
	default:
		return wgpu.TextureFormatUndefined, fmt.Errorf("unknown depth format %d", format)
	}
}

func isDepthFormat(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatDepth16Unorm,
		wgpu.TextureFormatDepth24Plus,
		wgpu.TextureFormatDepth24PlusStencil8,
		wgpu.TextureFormatDepth32Float,
		wgpu.TextureFormatDepth32FloatStencil8:
		return true
	}

	return false
}

func hasStencil(format wgpu.TextureFormat) bool {
	return format == wgpu.TextureFormatDepth24PlusStencil8 ||
		format == wgpu.TextureFormatDepth32FloatStencil8
}

// isFloatFormat reports whether the points written into the format keep
// their logarithmic depth in alpha.
func isFloatFormat(format wgpu.TextureFormat) bool {
	return format == wgpu.TextureFormatRGBA16Float ||
		format == wgpu.TextureFormatRGBA32Float
}

func bytesPerPixel(format wgpu.TextureFormat) (uint32, error) {
	switch format {
	case wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatBGRA8Unorm:
		return 4, nil
	case wgpu.TextureFormatRGBA32Float:
		return 16, nil
	default:
		return 0, fmt.Errorf("can not read pixels of format %s", format)
	}
}

// alignedBytesPerRow returns the stride of a row in a copy buffer.
func alignedBytesPerRow(width, bytesPerPixel uint32) uint32 {
	unaligned := width * bytesPerPixel
	return (unaligned + copyBytesPerRowAlignment - 1) / copyBytesPerRowAlignment * copyBytesPerRowAlignment
}
