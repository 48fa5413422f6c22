package shape

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/hologram/internal/gesture"
)

// PolyhedronDetail is the flat subdivision level used for the platonic solids.
const PolyhedronDetail = 2

// Solid describes one target geometry.
type Solid struct {
	Name     string
	Vertices func() []r3.Vec
}

func sphereSolid() Solid {
	return Solid{Name: "sphere", Vertices: func() []r3.Vec { return Sphere(1.2, 32, 32) }}
}

// Solids is the symbol to geometry table.
var Solids = [gesture.NumSymbols]Solid{
	gesture.None:  sphereSolid(),
	gesture.Zero:  sphereSolid(),
	gesture.Pinch: sphereSolid(),
	gesture.One:   {Name: "box", Vertices: func() []r3.Vec { return Box(1.5, 6) }},
	gesture.Two:   {Name: "torus", Vertices: func() []r3.Vec { return Torus(1, 0.4, 16, 100) }},
	gesture.Three: {Name: "octahedron", Vertices: func() []r3.Vec { return Octahedron(1.5, PolyhedronDetail) }},
	gesture.Four:  {Name: "icosahedron", Vertices: func() []r3.Vec { return Icosahedron(1.5, PolyhedronDetail) }},
	gesture.Five:  {Name: "dodecahedron", Vertices: func() []r3.Vec { return Dodecahedron(1.5, PolyhedronDetail) }},
	gesture.Heart: {Name: "torusknot", Vertices: func() []r3.Vec { return TorusKnot(1.2, 0.4, 64, 8, 2, 3) }},
}

// Sample draws n vertices uniformly with replacement. An empty vertex set
// yields n points at the origin.
func Sample(verts []r3.Vec, n int, rng *rand.Rand) []r3.Vec {
	out := make([]r3.Vec, n)
	if len(verts) == 0 {
		return out
	}
	for i := range out {
		out[i] = verts[rng.IntN(len(verts))]
	}
	return out
}

// Registry holds one immutable n-point buffer per symbol. It is read-only
// after Build and safe for concurrent use.
type Registry struct {
	n       int
	targets [gesture.NumSymbols][]r3.Vec
}

// Build samples every solid into an n-point buffer using rng. Symbols that
// share a solid share the computed vertex set but sample independently.
func Build(n int, rng *rand.Rand) *Registry {
	if n < 0 {
		n = 0
	}
	r := &Registry{n: n}

	cache := make(map[string][]r3.Vec)
	for sym, solid := range Solids {
		verts, ok := cache[solid.Name]
		if !ok {
			verts = solid.Vertices()
			cache[solid.Name] = verts
		}
		r.targets[sym] = Sample(verts, n, rng)
	}
	return r
}

// NewRegistry builds a registry from a fixed seed.
func NewRegistry(n int, seed uint64) *Registry {
	return Build(n, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Len returns the particle count every buffer has.
func (r *Registry) Len() int {
	return r.n
}

// Target returns the buffer for sym, falling back to the idle buffer for
// symbols outside the table. Callers must not modify it.
func (r *Registry) Target(sym gesture.Symbol) []r3.Vec {
	if !sym.Valid() {
		return r.targets[gesture.None]
	}
	return r.targets[sym]
}
