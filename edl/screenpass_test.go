package edl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenPassDraw(t *testing.T) {
	backend := newFakeBackend(64, 64)
	pass := NewScreenPass()

	material := NewMaterial()
	target := &fakeTarget{opts: TargetOptions{Width: 16, Height: 16}}

	require.NoError(t, pass.Draw(backend, material, target))

	renders := backend.callsOf("render")
	require.Len(t, renders, 1)
	assert.Same(t, target, renders[0].target)
	assert.Same(t, material, renders[0].material)

	// binding and quad are back to where they were
	assert.Nil(t, backend.RenderTarget())
	assert.Nil(t, pass.quad.Material)
}

func TestScreenPassDrawIntoBoundTarget(t *testing.T) {
	backend := newFakeBackend(64, 64)
	pass := NewScreenPass()

	bound := &fakeTarget{opts: TargetOptions{Width: 16, Height: 16}}
	backend.SetRenderTarget(bound)

	require.NoError(t, pass.Draw(backend, NewMaterial(), nil))
	require.NoError(t, pass.Draw(backend, NewMaterial(), nil))

	for _, c := range backend.callsOf("render") {
		assert.Same(t, bound, c.target)
	}

	assert.Same(t, bound, backend.RenderTarget())
}
