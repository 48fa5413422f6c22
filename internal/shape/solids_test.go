package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func TestSphere(t *testing.T) {
	verts := Sphere(1.2, 32, 32)
	require.Len(t, verts, 33*33)
	for _, v := range verts {
		assert.InDelta(t, 1.2, r3.Norm(v), tol)
	}
	assert.InDelta(t, 1.2, verts[0].Y, tol)
	assert.InDelta(t, -1.2, verts[len(verts)-1].Y, tol)
}

func TestBox(t *testing.T) {
	verts := Box(1.5, 6)
	require.Len(t, verts, 6*7*7)
	for _, v := range verts {
		m := math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
		assert.InDelta(t, 0.75, m, tol, "point %v not on the surface", v)
	}
}

func TestTorus(t *testing.T) {
	verts := Torus(1, 0.4, 16, 100)
	require.Len(t, verts, 17*101)
	for _, v := range verts {
		ring := math.Hypot(v.X, v.Y) - 1
		assert.InDelta(t, 0.4, math.Hypot(ring, v.Z), 1e-6)
	}
}

func TestTorusKnot(t *testing.T) {
	verts := TorusKnot(1.2, 0.4, 64, 8, 2, 3)
	require.Len(t, verts, 65*9)
	for _, v := range verts {
		n := r3.Norm(v)
		assert.False(t, math.IsNaN(n))
		// Curve radius is within [0.6, 1.8]; the tube adds at most 0.4.
		assert.LessOrEqual(t, n, 1.8+0.4+tol)
	}
}

func TestPolyhedra(t *testing.T) {
	tests := []struct {
		name  string
		verts []r3.Vec
		faces int
	}{
		{"octahedron", Octahedron(1.5, 0), 8},
		{"icosahedron", Icosahedron(1.5, 0), 20},
		{"dodecahedron", Dodecahedron(1.5, 0), 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, tt.verts, tt.faces*3)
			for _, v := range tt.verts {
				assert.LessOrEqual(t, r3.Norm(v), 1.5+tol)
			}
		})
	}
}

func TestIcosahedron_EdgesEqual(t *testing.T) {
	verts := Icosahedron(1, 0)
	edge := r3.Norm(r3.Sub(verts[0], verts[1]))
	for f := 0; f < len(verts); f += 3 {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, edge, r3.Norm(r3.Sub(verts[f+k], verts[f+(k+1)%3])), tol)
		}
	}
}

func TestDodecahedron_Circumradius(t *testing.T) {
	verts := Dodecahedron(1.5, 0)
	outer := 0
	for _, v := range verts {
		if math.Abs(r3.Norm(v)-1.5) < tol {
			outer++
		}
	}
	// Two of every three fan-triangle vertices are corners of the solid.
	assert.Equal(t, 2*len(verts)/3, outer)
}

func TestSubdivide_StaysFlat(t *testing.T) {
	base := Octahedron(1, 0)
	fine := Octahedron(1, PolyhedronDetail)
	require.Len(t, fine, len(base)*(PolyhedronDetail+1)*(PolyhedronDetail+1))

	// Every point of the first face lies on the plane x + y + z = 1.
	perFace := len(fine) / 8
	for _, v := range fine[:perFace] {
		assert.InDelta(t, 1, v.X+v.Y+v.Z, tol)
	}
}
