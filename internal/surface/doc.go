// Package surface simulates a growing self-avoiding surface of point masses.
//
// Points attract their topological neighbours to a rest length and repel
// every other point that comes closer than a repulsion threshold. One
// [Simulation.Update] runs:
//
//   - anchoring of attached points to the boundary
//   - volume measurement, only when pressure or the boundary needs it
//   - the force pass, in parallel, each point writing its own acceleration
//   - integration, in parallel
//   - the grid rebuild and the boundary update
//
// New points are added between updates by a [Growth] strategy:
//
//   - [RingGrowth]: 2D closed curve, edge bisection
//   - [EdgeGrowth]: 3D closed mesh, edge bisection
//   - [DelaunayGrowth]: 3D closed mesh, full spherical re-triangulation
//   - [TreeGrowth]: 2D or 3D branching graph
//
// A run is deterministic for a given seed: every random choice comes from
// one RNG used serially, and parallel reductions sum fixed-size chunks in
// order.
//
// Broken invariants panic with an [InvariantError]; configuration problems are
// returned as errors by [New] and [Build].
package surface
