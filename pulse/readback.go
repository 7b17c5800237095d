package pulse

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
)

// readPixels copies the color attachment of the target into a mappable
// buffer and converts it to rgba8 rows, top row first.
func readPixels(ctx *Context, target *RenderTarget) ([]byte, error) {
	format := target.Format()

	bpp, err := bytesPerPixel(format)
	if err != nil {
		return nil, err
	}

	width, height := target.Width(), target.Height()
	stride := alignedBytesPerRow(width, bpp)
	size := uint64(stride) * uint64(height)

	buffer, err := ctx.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ReadPixels",
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})

	if err != nil {
		return nil, fmt.Errorf("create read buffer: %w", err)
	}

	defer buffer.Release()

	encoder, err := ctx.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "ReadPixels"})
	if err != nil {
		return nil, err
	}

	defer encoder.Release()

	err = encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{
			Texture:  target.color.SourceTexture(),
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyBuffer{
			Buffer: buffer,
			Layout: wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  stride,
				RowsPerImage: height,
			},
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("copy texture to buffer: %w", err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return nil, err
	}

	defer cmdBuffer.Release()

	queue := ctx.GetQueue()
	defer queue.Release()

	queue.Submit(cmdBuffer)

	var status wgpu.BufferMapAsyncStatus
	err = buffer.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})

	if err != nil {
		return nil, fmt.Errorf("map read buffer: %w", err)
	}

	ctx.Wait()

	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("map read buffer: status is %s", status.String())
	}

	defer buffer.Unmap()

	mapped := buffer.GetMappedRange(0, uint(size))

	pixels := make([]byte, 0, width*height*4)
	for y := range height {
		row := mapped[y*stride : y*stride+width*bpp]
		pixels = appendRGBA8(pixels, format, row)
	}

	return pixels, nil
}

// appendRGBA8 converts a row of pixels in the given format to rgba8.
func appendRGBA8(pixels []byte, format wgpu.TextureFormat, row []byte) []byte {
	switch format {
	case wgpu.TextureFormatRGBA8Unorm:
		return append(pixels, row...)

	case wgpu.TextureFormatBGRA8Unorm:
		for idx := 0; idx+4 <= len(row); idx += 4 {
			pixels = append(pixels, row[idx+2], row[idx+1], row[idx], row[idx+3])
		}

		return pixels

	case wgpu.TextureFormatRGBA32Float:
		for idx := 0; idx+4 <= len(row); idx += 4 {
			value := math.Float32frombits(binary.LittleEndian.Uint32(row[idx:]))
			pixels = append(pixels, unorm8(value))
		}

		return pixels
	}

	panic(fmt.Sprintf("unsupported format %s", format))
}

func unorm8(value float32) byte {
	return byte(min(max(value, 0), 1)*255 + 0.5)
}
