package glbackend

import (
	"unsafe"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
)

type attrib struct {
	location uint32
	size     int32
	offset   uintptr
}

// vertexAttribs matches the input locations declared by the scene shader.
var vertexAttribs = []attrib{
	{0, 3, unsafe.Offsetof(backend.Vertex{}.Position)},
	{1, 3, unsafe.Offsetof(backend.Vertex{}.Normal)},
	{2, 2, unsafe.Offsetof(backend.Vertex{}.UV)},
	{3, 4, unsafe.Offsetof(backend.Vertex{}.Tangent)},
	{4, 4, unsafe.Offsetof(backend.Vertex{}.Color)},
}

// handles hands out non-zero resource identifiers.
type handles struct {
	last uint32
}

func (h *handles) next() uint32 {
	h.last++
	return h.last
}
