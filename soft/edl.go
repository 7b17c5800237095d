package soft

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/scene"
)

const neighbourCount = 8

// tolerance of the depth test for reconstructed depth values, the
// reconstruction from the logarithmic depth is not exact
const reconstructedDepthTolerance = uint32(maxDepth) / 100_000

var neighbours = func() [neighbourCount]glm.Vec2f {
	var result [neighbourCount]glm.Vec2f
	for idx := range result {
		angle := 2 * math32.Pi * float32(idx) / neighbourCount
		sin, cos := glm.Sincos(glm.Rad(angle))
		result[idx] = glm.Vec2f{cos, sin}
	}

	return result
}()

func drawQuad(target *RenderTarget, quad *scene.Quad) error {
	switch material := quad.Material.(type) {
	case *edl.Material:
		return drawEDL(target, material)

	case nil:
		return nil

	default:
		return fmt.Errorf("unsupported material %T", material)
	}
}

// drawEDL shades every pixel of the target with the capture attachments of
// the material.
func drawEDL(target *RenderTarget, material *edl.Material) error {
	u := material.Uniforms()
	defer material.MarkUploaded()

	if !u.HasInputs() {
		return nil
	}

	capture, ok := u.ColorTexture.(*ColorTexture)
	if !ok {
		return fmt.Errorf("capture texture of type %T", u.ColorTexture)
	}

	uvRadius := glm.Vec2f{u.Radius / u.ScreenWidth, u.Radius / u.ScreenHeight}

	width := target.Width()
	height := target.Height()

	for y := range height {
		for x := range width {
			uv := glm.Vec2f{
				(float32(x) + 0.5) / float32(width),
				(float32(y) + 0.5) / float32(height),
			}

			sample := capture.Sample(uv)

			depth := emptyDepth(sample[3])
			if depth == 0 {
				continue
			}

			shade := math32.Exp(-response(capture, uv, uvRadius, depth) * 300 * u.Strength)

			fragDepth := depthToUint(float64(reconstructDepth(u.Proj, depth)))
			if material.DepthTest() && !target.depthTest(x, y, fragDepth, reconstructedDepthTolerance) {
				continue
			}

			src := glm.Vec4f{sample[0] * shade, sample[1] * shade, sample[2] * shade, u.Opacity}
			target.color.Set(x, y, blend(src, target.color.At(x, y)))

			if material.DepthWrite() {
				target.writeDepth(x, y, fragDepth)
			}
		}
	}

	return nil
}

// response sums the depth differences to the neighbours on a circle around uv.
func response(capture *ColorTexture, uv, uvRadius glm.Vec2f, depth float32) float32 {
	var sum float32

	for _, direction := range neighbours {
		neighbour := capture.Sample(uv.Add(uvRadius.Mul(direction)))

		neighbourDepth := emptyDepth(neighbour[3])
		if neighbourDepth == 0 {
			continue
		}

		sum += max(0, depth-neighbourDepth)
	}

	return sum / neighbourCount
}

// emptyDepth maps the alpha of cleared pixels to zero.
func emptyDepth(alpha float32) float32 {
	if alpha == 1 {
		return 0
	}

	return alpha
}

// reconstructDepth projects the linear depth stored as log2 back to a
// normalized depth buffer value.
func reconstructDepth(proj [16]float32, logDepth float32) float32 {
	linear := math32.Pow(2, logDepth)

	dp := glm.Mat4f(proj).Transform(glm.Vec4f{0, 0, -linear, 1})
	return (dp[2]/dp[3] + 1) / 2
}

// blend with straight alpha.
func blend(src, dst glm.Vec4f) glm.Vec4f {
	a := src[3]

	return glm.Vec4f{
		src[0]*a + dst[0]*(1-a),
		src[1]*a + dst[1]*(1-a),
		src[2]*a + dst[2]*(1-a),
		a + dst[3]*(1-a),
	}
}
