// Package shape builds the per-gesture target point sets the particle cloud
// morphs toward.
package shape

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere returns the vertex grid of a UV sphere with widthSegments x
// heightSegments divisions, poles on the y axis.
func Sphere(radius float64, widthSegments, heightSegments int) []r3.Vec {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	verts := make([]r3.Vec, 0, (widthSegments+1)*(heightSegments+1))
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			verts = append(verts, r3.Vec{
				X: -radius * math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi),
				Y: radius * math.Cos(v*math.Pi),
				Z: radius * math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi),
			})
		}
	}
	return verts
}

// Box returns a grid of points on the six faces of an axis-aligned cube of
// edge size centred at the origin. Edge and corner points are shared by
// adjacent faces and appear once per face.
func Box(size float64, segments int) []r3.Vec {
	segments = max(segments, 1)
	half := size / 2
	step := size / float64(segments)

	verts := make([]r3.Vec, 0, 6*(segments+1)*(segments+1))
	for axis := 0; axis < 3; axis++ {
		for _, sign := range [2]float64{1, -1} {
			for i := 0; i <= segments; i++ {
				for j := 0; j <= segments; j++ {
					a := -half + float64(i)*step
					b := -half + float64(j)*step
					var p r3.Vec
					switch axis {
					case 0:
						p = r3.Vec{X: sign * half, Y: a, Z: b}
					case 1:
						p = r3.Vec{X: a, Y: sign * half, Z: b}
					default:
						p = r3.Vec{X: a, Y: b, Z: sign * half}
					}
					verts = append(verts, p)
				}
			}
		}
	}
	return verts
}

// Torus returns the vertex grid of a torus lying in the xy plane.
func Torus(radius, tube float64, radialSegments, tubularSegments int) []r3.Vec {
	radialSegments = max(radialSegments, 2)
	tubularSegments = max(tubularSegments, 3)

	verts := make([]r3.Vec, 0, (radialSegments+1)*(tubularSegments+1))
	for j := 0; j <= radialSegments; j++ {
		v := float64(j) / float64(radialSegments) * 2 * math.Pi
		for i := 0; i <= tubularSegments; i++ {
			u := float64(i) / float64(tubularSegments) * 2 * math.Pi
			verts = append(verts, r3.Vec{
				X: (radius + tube*math.Cos(v)) * math.Cos(u),
				Y: (radius + tube*math.Cos(v)) * math.Sin(u),
				Z: tube * math.Sin(v),
			})
		}
	}
	return verts
}

// TorusKnot returns the vertex grid of a (p, q) torus knot tube.
func TorusKnot(radius, tube float64, tubularSegments, radialSegments, p, q int) []r3.Vec {
	tubularSegments = max(tubularSegments, 3)
	radialSegments = max(radialSegments, 3)
	if p == 0 {
		p = 2
	}

	curve := func(u float64) r3.Vec {
		quOverP := float64(q) / float64(p) * u
		cs := math.Cos(quOverP)
		return r3.Vec{
			X: radius * (2 + cs) * 0.5 * math.Cos(u),
			Y: radius * (2 + cs) * 0.5 * math.Sin(u),
			Z: radius * math.Sin(quOverP) * 0.5,
		}
	}

	verts := make([]r3.Vec, 0, (tubularSegments+1)*(radialSegments+1))
	for i := 0; i <= tubularSegments; i++ {
		u := float64(i) / float64(tubularSegments) * float64(p) * 2 * math.Pi
		p1 := curve(u)
		p2 := curve(u + 0.01)

		// Frenet-like frame along the curve.
		t := r3.Sub(p2, p1)
		n := r3.Add(p2, p1)
		b := r3.Unit(r3.Cross(t, n))
		n = r3.Unit(r3.Cross(b, t))

		for j := 0; j <= radialSegments; j++ {
			v := float64(j) / float64(radialSegments) * 2 * math.Pi
			cx := -tube * math.Cos(v)
			cy := tube * math.Sin(v)
			verts = append(verts, r3.Add(p1, r3.Add(r3.Scale(cx, n), r3.Scale(cy, b))))
		}
	}
	return verts
}

// Octahedron returns the triangle vertices of a regular octahedron with
// circumradius radius, each face subdivided detail times.
func Octahedron(radius float64, detail int) []r3.Vec {
	vertices := []r3.Vec{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	indices := []int{
		0, 2, 4, 0, 4, 3, 0, 3, 5, 0, 5, 2,
		1, 2, 5, 1, 5, 3, 1, 3, 4, 1, 4, 2,
	}
	return polyhedron(vertices, indices, radius, detail)
}

var phi = (1 + math.Sqrt(5)) / 2

var icosahedronVertices = []r3.Vec{
	{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
	{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
	{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
}

var icosahedronIndices = []int{
	0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
	1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
	3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
	4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
}

// Icosahedron returns the triangle vertices of a regular icosahedron with
// circumradius radius, each face subdivided detail times.
func Icosahedron(radius float64, detail int) []r3.Vec {
	return polyhedron(icosahedronVertices, icosahedronIndices, radius, detail)
}

// Dodecahedron returns the triangle vertices of a regular dodecahedron with
// circumradius radius, each face subdivided detail times. The solid is built
// as the dual of the icosahedron: one vertex per icosahedron face and one
// pentagon, fanned from its centre, per icosahedron vertex.
func Dodecahedron(radius float64, detail int) []r3.Vec {
	faces := len(icosahedronIndices) / 3

	centroids := make([]r3.Vec, faces)
	for f := 0; f < faces; f++ {
		a := icosahedronVertices[icosahedronIndices[3*f]]
		b := icosahedronVertices[icosahedronIndices[3*f+1]]
		c := icosahedronVertices[icosahedronIndices[3*f+2]]
		centroids[f] = r3.Unit(r3.Scale(1.0/3, r3.Add(a, r3.Add(b, c))))
	}

	vertices := append([]r3.Vec(nil), centroids...)
	var indices []int

	for vi, axis := range icosahedronVertices {
		axis = r3.Unit(axis)

		var ring []int
		for f := 0; f < faces; f++ {
			if icosahedronIndices[3*f] == vi || icosahedronIndices[3*f+1] == vi || icosahedronIndices[3*f+2] == vi {
				ring = append(ring, f)
			}
		}
		orderAround(axis, ring, centroids)

		center := r3.Vec{}
		for _, f := range ring {
			center = r3.Add(center, centroids[f])
		}
		center = r3.Scale(1/float64(len(ring)), center)

		ci := len(vertices)
		vertices = append(vertices, center)
		for k := range ring {
			indices = append(indices, ci, ring[k], ring[(k+1)%len(ring)])
		}
	}

	// Centres lie inside the circumsphere, so scale without renormalizing.
	out := subdivide(vertices, indices, detail)
	for i := range out {
		out[i] = r3.Scale(radius, out[i])
	}
	return out
}

// orderAround sorts ring (indices into pts) by angle about axis.
func orderAround(axis r3.Vec, ring []int, pts []r3.Vec) {
	ref := r3.Sub(pts[ring[0]], r3.Scale(r3.Dot(pts[ring[0]], axis), axis))
	ref = r3.Unit(ref)
	side := r3.Cross(axis, ref)

	angle := func(i int) float64 {
		p := pts[i]
		return math.Atan2(r3.Dot(p, side), r3.Dot(p, ref))
	}
	for i := 1; i < len(ring); i++ {
		for j := i; j > 0 && angle(ring[j]) < angle(ring[j-1]); j-- {
			ring[j], ring[j-1] = ring[j-1], ring[j]
		}
	}
}

// polyhedron scales the base vertices onto the circumsphere and subdivides
// each face flat, so subdivision points stay on the faces.
func polyhedron(vertices []r3.Vec, indices []int, radius float64, detail int) []r3.Vec {
	base := make([]r3.Vec, len(vertices))
	for i, v := range vertices {
		base[i] = r3.Scale(radius, r3.Unit(v))
	}
	return subdivide(base, indices, detail)
}

// subdivide splits every triangle into (detail+1)^2 smaller triangles and
// returns their vertices, three per triangle.
func subdivide(vertices []r3.Vec, indices []int, detail int) []r3.Vec {
	detail = max(detail, 0)
	cols := detail + 1

	var out []r3.Vec
	for f := 0; f+2 < len(indices); f += 3 {
		a := vertices[indices[f]]
		b := vertices[indices[f+1]]
		c := vertices[indices[f+2]]

		grid := make([][]r3.Vec, cols+1)
		for i := 0; i <= cols; i++ {
			aj := lerp(a, c, float64(i)/float64(cols))
			bj := lerp(b, c, float64(i)/float64(cols))
			rows := cols - i
			grid[i] = make([]r3.Vec, rows+1)
			for j := 0; j <= rows; j++ {
				if j == 0 && i == cols {
					grid[i][j] = aj
				} else {
					grid[i][j] = lerp(aj, bj, float64(j)/float64(rows))
				}
			}
		}

		for i := 0; i < cols; i++ {
			for j := 0; j < 2*(cols-i)-1; j++ {
				k := j / 2
				if j%2 == 0 {
					out = append(out, grid[i][k+1], grid[i+1][k], grid[i][k])
				} else {
					out = append(out, grid[i][k+1], grid[i+1][k+1], grid[i+1][k])
				}
			}
		}
	}
	return out
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}
