package soft

import (
	"math"

	"github.com/oliverbestmann/edlview/edl"
	"github.com/oliverbestmann/edlview/glm"
	"github.com/oliverbestmann/edlview/pointcloud"
	"github.com/oliverbestmann/edlview/scene"
)

// drawPoints rasterizes the visible nodes of the cloud as squares of the
// material point size. Returns the number of points that passed clipping.
func drawPoints(target *RenderTarget, cloud *pointcloud.PointCloud, camera *scene.Camera) int {
	material := cloud.Material

	view := camera.View.ToFloat64()
	projection := camera.Projection.ToFloat64()

	width := float64(target.Width())
	height := float64(target.Height())

	// float targets get the logarithmic linear depth in alpha
	writeLogDepth := material.UseEDL && target.color.format != edl.ColorFormatDefault

	size := max(1, int(math.Round(float64(material.PointSize))))

	var drawn int

	for _, node := range cloud.VisibleNodes {
		for _, point := range node.Points {
			x, y, z := point.Position.XYZ()

			viewPos := view.Transform(glm.Vec4d{float64(x), float64(y), float64(z), 1})
			clip := projection.Transform(viewPos)

			w := clip[3]
			if w <= 0 ||
				clip[0] < -w || clip[0] > w ||
				clip[1] < -w || clip[1] > w ||
				clip[2] < -w || clip[2] > w {
				continue
			}

			ndcX := clip[0] / w
			ndcY := clip[1] / w
			ndcZ := clip[2] / w

			depth := depthToUint((ndcZ + 1) / 2)

			color := glm.Vec4f{
				float32(point.Color[0]) / 255,
				float32(point.Color[1]) / 255,
				float32(point.Color[2]) / 255,
				1,
			}

			if writeLogDepth {
				color[3] = float32(math.Log2(-viewPos[2]))
			}

			// top left origin
			px := int(math.Floor((ndcX + 1) / 2 * width))
			py := int(math.Floor((1 - ndcY) / 2 * height))

			splat(target, px-(size-1)/2, py-(size-1)/2, size, color, depth, material.DepthWrite())

			drawn++
		}
	}

	return drawn
}

func splat(target *RenderTarget, x0, y0, size int, color glm.Vec4f, depth uint32, depthWrite bool) {
	width := int(target.Width())
	height := int(target.Height())

	for y := max(y0, 0); y < min(y0+size, height); y++ {
		for x := max(x0, 0); x < min(x0+size, width); x++ {
			ux, uy := uint32(x), uint32(y)

			if !target.depthTest(ux, uy, depth, 0) {
				continue
			}

			target.color.Set(ux, uy, color)

			if depthWrite {
				target.writeDepth(ux, uy, depth)
			}
		}
	}
}
