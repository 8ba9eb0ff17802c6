package surface

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
	"github.com/san-kum/seals/internal/topology"
	"github.com/san-kum/seals/internal/vecmath"
)

// asVec3 and fromVec3 convert between V and mgl64.Vec3. They are only called
// for triangle meshes, which exist in 3D only.
func asVec3[V vecmath.Vec[V]](v V) mgl64.Vec3 { return any(v).(mgl64.Vec3) }

func fromVec3[V vecmath.Vec[V]](v mgl64.Vec3) V { return any(v).(V) }

// signedVolume is the signed ring area, the signed mesh volume, or the total
// edge length of any other topology.
func (s *Simulation[V]) signedVolume() float64 {
	switch t := s.topo.(type) {
	case *topology.Ring:
		area := ParallelSum(len(s.points), sumChunk, func(i int) float64 {
			a := s.points[i].Position
			b := s.points[t.Next(i)].Position
			return a[0]*b[1] - b[0]*a[1]
		})
		return area / 2
	case *topology.Mesh:
		tris := t.Triangles()
		vol := ParallelSum(len(tris), sumChunk, func(k int) float64 {
			a := asVec3(s.points[tris[k][0]].Position)
			b := asVec3(s.points[tris[k][1]].Position)
			c := asVec3(s.points[tris[k][2]].Position)
			return a.Dot(b.Cross(c))
		})
		return vol / 6
	default:
		adj := s.topo.Adjacency()
		return ParallelSum(len(adj), sumChunk, func(i int) float64 {
			var l float64
			for _, j := range adj[i] {
				if j > i {
					l += s.points[j].Position.Sub(s.points[i].Position).Len()
				}
			}
			return l
		})
	}
}

// measure refreshes the cached volume and orientation.
func (s *Simulation[V]) measure() {
	v := s.signedVolume()
	s.volume = math.Abs(v)
	s.orientation = 1
	if v < 0 {
		s.orientation = -1
	}
}

// computeNormals fills s.normals with outward unit normals. Trees have none.
func (s *Simulation[V]) computeNormals() {
	n := len(s.points)
	if cap(s.normals) < n {
		s.normals = make([]V, n)
	} else {
		s.normals = s.normals[:n]
		clear(s.normals)
	}

	switch t := s.topo.(type) {
	case *topology.Ring:
		// for a counter-clockwise ring the right-hand perpendicular of
		// (next - prev) points out
		for i := range s.points {
			d := s.points[t.Next(i)].Position.Sub(s.points[t.Prev(i)].Position)
			var nv V
			nv[0], nv[1] = d[1], -d[0]
			s.normals[i] = nv
		}
	case *topology.Mesh:
		for _, tri := range t.Triangles() {
			a := asVec3(s.points[tri[0]].Position)
			b := asVec3(s.points[tri[1]].Position)
			c := asVec3(s.points[tri[2]].Position)
			face := fromVec3[V](b.Sub(a).Cross(c.Sub(a)))
			for _, k := range tri {
				s.normals[k] = s.normals[k].Add(face)
			}
		}
	default:
		return
	}

	for i := range s.normals {
		s.normals[i] = vecmath.Normalize(s.normals[i]).Mul(s.orientation)
	}
}

// icosahedron returns the unit starting shape of the sphere strategies: a
// regular icosahedron turned about the Z axis so that vertex 0 lies on the
// projection pole (0, 1, 0).
func icosahedron() ([]mgl64.Vec3, [][3]int) {
	t := (1 + math.Sqrt(5)) / 2
	raw := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	// (ux, uy) is the XY direction of raw[0]
	u := mgl64.Vec2{raw[0][0], raw[0][1]}.Normalize()
	verts := make([]mgl64.Vec3, len(raw))
	for i, v := range raw {
		v = v.Normalize()
		verts[i] = mgl64.Vec3{u[1]*v[0] - u[0]*v[1], u[0]*v[0] + u[1]*v[1], v[2]}
	}
	verts[0] = mgl64.Vec3{0, 1, 0}
	tris := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return verts, tris
}

// initSphere seeds s with the icosahedron, scaled to the rest length, and
// returns its mesh.
func initSphere(s *Simulation[mgl64.Vec3], attachFirst bool) *topology.Mesh {
	verts, tris := icosahedron()
	for _, v := range verts {
		p := s.newPoint(v.Mul(s.params.Attraction))
		p.Spherical = s2.Point{Vector: r3.Vector{X: v[0], Y: v[1], Z: v[2]}}
		s.push(p)
	}
	m := topology.NewMesh(len(verts), tris)
	s.topo = m
	if attachFirst && s.params.Boundary != nil {
		s.points[0].Attached = true
	}
	return m
}

// sphereMidpoint is the normalised mean of two sphere points.
func sphereMidpoint(a, b s2.Point) (s2.Point, bool) {
	sum := a.Vector.Add(b.Vector)
	if sum.Norm() == 0 {
		return s2.Point{}, false
	}
	return s2.Point{Vector: sum.Normalize()}, true
}
