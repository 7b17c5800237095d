package glm

import (
	"golang.org/x/mobile/exp/f32"
)

// Sincos returns the sine and cosine of the given angle in single precision.
func Sincos(r Rad) (float32, float32) {
	return fastSin(r), fastCos(r)
}

func fastSin(r Rad) float32 {
	return f32.Sin(float32(r))
}

func fastCos(r Rad) float32 {
	return f32.Cos(float32(r))
}
