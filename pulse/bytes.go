package pulse

import "unsafe"

// uniformBytes views a uniform struct as bytes for Queue.WriteBuffer. The
// struct must use structs.HostLayout and match the wgsl layout.
func uniformBytes[U any](uniforms *U) []byte {
	size := unsafe.Sizeof(*uniforms)
	return unsafe.Slice((*byte)(unsafe.Pointer(uniforms)), size)
}
