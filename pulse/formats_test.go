package pulse

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/edlview/edl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorFormatOf(t *testing.T) {
	cases := map[edl.ColorFormat]wgpu.TextureFormat{
		edl.ColorFormatDefault:   wgpu.TextureFormatRGBA8Unorm,
		edl.ColorFormatHalfFloat: wgpu.TextureFormatRGBA16Float,
		edl.ColorFormatFloat:     wgpu.TextureFormatRGBA32Float,
	}

	for format, expected := range cases {
		actual, err := colorFormatOf(format)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	}

	_, err := colorFormatOf(edl.ColorFormat(42))
	assert.Error(t, err)
}

func TestDepthFormatOf(t *testing.T) {
	format, err := depthFormatOf(edl.DepthNone)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatUndefined, format)

	format, err = depthFormatOf(edl.DepthUint)
	require.NoError(t, err)
	assert.True(t, isDepthFormat(format))
	assert.True(t, hasStencil(format))

	format, err = depthFormatOf(edl.DepthFloat)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatDepth32Float, format)
	assert.False(t, hasStencil(format))

	_, err = depthFormatOf(edl.DepthFormat(42))
	assert.Error(t, err)
}

func TestLogDepthOnlyForFloatFormats(t *testing.T) {
	assert.False(t, isFloatFormat(wgpu.TextureFormatRGBA8Unorm))
	assert.False(t, isFloatFormat(wgpu.TextureFormatBGRA8Unorm))
	assert.True(t, isFloatFormat(wgpu.TextureFormatRGBA16Float))
	assert.True(t, isFloatFormat(wgpu.TextureFormatRGBA32Float))
}

func TestAlignedBytesPerRow(t *testing.T) {
	assert.Equal(t, uint32(256), alignedBytesPerRow(1, 4))
	assert.Equal(t, uint32(256), alignedBytesPerRow(64, 4))
	assert.Equal(t, uint32(512), alignedBytesPerRow(65, 4))
	assert.Equal(t, uint32(1024), alignedBytesPerRow(64, 16))
}

func TestBytesPerPixel(t *testing.T) {
	bpp, err := bytesPerPixel(wgpu.TextureFormatRGBA8Unorm)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), bpp)

	bpp, err = bytesPerPixel(wgpu.TextureFormatRGBA32Float)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), bpp)

	_, err = bytesPerPixel(wgpu.TextureFormatRGBA16Float)
	assert.Error(t, err)
}

func TestAppendRGBA8(t *testing.T) {
	pixels := appendRGBA8(nil, wgpu.TextureFormatBGRA8Unorm, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	assert.Equal(t, []byte{3, 2, 1, 4, 7, 6, 5, 8}, pixels)

	row := wgpu.ToBytes([]float32{0, 0.5, 1, 2})
	pixels = appendRGBA8(pixels[:0], wgpu.TextureFormatRGBA32Float, row)
	assert.Equal(t, []byte{0, 128, 255, 255}, pixels)
}
