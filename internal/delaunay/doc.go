// Package delaunay triangulates points on the unit sphere.
//
// [Triangulate] is an incremental planar Delaunay construction over a flat
// coordinate slice (x0, y0, x1, y1, ...). It keeps an advancing convex hull
// indexed by pseudo-angle around the seed circumcentre and restores the empty
// circumcircle property by edge flips after every insertion.
//
// [Sphere] projects sphere points stereographically from the north pole,
// triangulates the projection and closes the mesh by fanning the remaining
// hull edges around the pole point (index 0).
//
// # Failure modes
//
// Inputs whose seed triangle cannot be formed (fewer than three distinct
// points, or all points collinear) return [ErrNotTriangulation]. Points that
// coincide with an earlier point within machine epsilon are skipped and end up
// in no triangle.
package delaunay
