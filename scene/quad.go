package scene

type BlendMode int

const (
	// BlendReplace writes the material output unchanged.
	BlendReplace BlendMode = iota

	// BlendAlpha blends with straight alpha: src*a + dst*(1-a).
	BlendAlpha
)

// Material describes how a backend draws a mesh. Concrete materials carry
// their own shader inputs, backends switch on the concrete type.
type Material interface {
	Blend() BlendMode
	DepthTest() bool
	DepthWrite() bool
}

// Quad is a mesh covering the full [-1, 1] clip space square. It is drawn
// with an orthographic identity camera to fill the current target.
type Quad struct {
	Material Material
}

func (q *Quad) Kind() Kind {
	return KindQuad
}
