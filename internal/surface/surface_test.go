package surface_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/seals/internal/boundary"
	"github.com/san-kum/seals/internal/config"
	"github.com/san-kum/seals/internal/surface"
)

func newConfig(dim int, strategy string, seed int64) *config.Config {
	cfg := config.DefaultConfig(dim)
	cfg.Strategy = strategy
	cfg.Seed = seed
	return cfg
}

func build(cfg *config.Config) surface.Model {
	m, err := surface.Build(cfg)
	Expect(err).NotTo(HaveOccurred())
	return m
}

// grow alternates AddParticle and Update n times.
func grow(m surface.Model, n int) {
	for i := 0; i < n; i++ {
		m.SetProgress(float64(i) / float64(n))
		m.AddParticle()
		m.Update()
	}
}

var _ = Describe("Simulation", func() {
	DescribeTable("keeps its topology consistent while growing",
		func(dim int, strategy, hint string) {
			m := build(newConfig(dim, strategy, 11))
			start := m.Len()
			for i := 0; i < 60; i++ {
				m.AddParticle()
				Expect(m.Len()).To(Equal(start + i + 1))
				m.Update()
			}

			Expect(m.Validate()).To(Succeed())
			Expect(m.Step()).To(Equal(60))
			Expect(m.TypeHint()).To(Equal(hint))
			Expect(m.Strategy()).To(Equal(strategy))

			f := m.Frame(surface.FrameMeta{})
			Expect(f.Positions).To(HaveLen(m.Len()))
			if f.Mesh() {
				// closed sphere triangulation
				Expect(f.Triangles).To(HaveLen(2*m.Len() - 4))
			} else {
				Expect(f.Neighbours).To(HaveLen(m.Len()))
			}
		},
		Entry("2D ring", 2, config.StrategyEdge, "s2"),
		Entry("2D tree", 2, config.StrategyTree, "t2"),
		Entry("3D edge", 3, config.StrategyEdge, "s3"),
		Entry("3D delaunay", 3, config.StrategyDelaunay, "s3"),
		Entry("3D delaunay-aniso", 3, config.StrategyDelaunayAniso, "s3"),
		Entry("3D tree", 3, config.StrategyTree, "t3"),
	)

	DescribeTable("is deterministic for a seed",
		func(dim int, strategy string) {
			a := build(newConfig(dim, strategy, 5))
			b := build(newConfig(dim, strategy, 5))
			grow(a, 40)
			grow(b, 40)

			fa := a.Frame(surface.FrameMeta{})
			fb := b.Frame(surface.FrameMeta{})
			Expect(fa.Positions).To(Equal(fb.Positions))
			Expect(fa.Triangles).To(Equal(fb.Triangles))
			Expect(fa.Neighbours).To(Equal(fb.Neighbours))
			Expect(fa.Volume).To(Equal(fb.Volume))
		},
		Entry("2D ring", 2, config.StrategyEdge),
		Entry("2D tree", 2, config.StrategyTree),
		Entry("3D edge", 3, config.StrategyEdge),
		Entry("3D delaunay", 3, config.StrategyDelaunay),
	)

	It("depends on the seed", func() {
		a := build(newConfig(2, config.StrategyEdge, 1))
		b := build(newConfig(2, config.StrategyEdge, 2))
		grow(a, 20)
		grow(b, 20)
		Expect(a.Frame(surface.FrameMeta{}).Positions).NotTo(Equal(b.Frame(surface.FrameMeta{}).Positions))
	})

	It("never increases flexibility", func() {
		cfg := newConfig(2, config.StrategyEdge, 3)
		cfg.Params.Rigidity = 0.05
		m := build(cfg)
		grow(m, 10)

		last := m.Stats().MeanFlexibility
		for i := 0; i < 40; i++ {
			m.Update()
			flex := m.Stats().MeanFlexibility
			Expect(flex).To(BeNumerically("<=", last))
			last = flex
		}
		Expect(last).To(BeNumerically("<", 0.5))
	})

	It("freezes fully rigid points", func() {
		cfg := newConfig(2, config.StrategyEdge, 3)
		cfg.Ring.InitialPoints = 8
		cfg.Params.Rigidity = 1
		m := build(cfg)
		m.Update()

		before := m.Frame(surface.FrameMeta{}).Positions
		for i := 0; i < 10; i++ {
			m.Update()
		}
		Expect(m.Frame(surface.FrameMeta{}).Positions).To(Equal(before))
		Expect(m.Stats().MeanFlexibility).To(BeZero())
	})

	It("inflates under positive pressure", func() {
		cfg := newConfig(2, config.StrategyEdge, 9)
		cfg.Params.Noise = 0
		relaxed := build(cfg)

		cfg = newConfig(2, config.StrategyEdge, 9)
		cfg.Params.Noise = 0
		cfg.Params.Pressure = 0.001
		cfg.Params.TargetVolume = 10
		pressed := build(cfg)

		for i := 0; i < 50; i++ {
			relaxed.Update()
			pressed.Update()
		}
		Expect(pressed.Volume()).To(BeNumerically(">", relaxed.Volume()))
	})

	It("grows trees only from leaves once branching stops", func() {
		cfg := newConfig(2, config.StrategyTree, 4)
		cfg.Tree.StopBranchingAfter = 0.01
		cfg.Tree.MaxLeafDistance = 0
		m := build(cfg)
		m.SetProgress(1)
		for i := 0; i < 50; i++ {
			m.AddParticle()
		}

		Expect(m.Validate()).To(Succeed())
		for i, nb := range m.Frame(surface.FrameMeta{}).Neighbours {
			Expect(len(nb)).To(BeNumerically("<=", 2), "node %d", i)
		}
	})

	It("anchors the first point of an attached tree", func() {
		cfg := newConfig(2, config.StrategyTree, 4)
		cfg.Tree.AttachFirst = true
		m := build(cfg)
		Expect(m.Stats().Attached).To(Equal(1))
		grow(m, 20)
		Expect(m.Validate()).To(Succeed())
	})

	It("reports the starting shape", func() {
		m := build(newConfig(2, config.StrategyEdge, 1))
		st := m.Stats()
		Expect(st.Points).To(Equal(3))
		Expect(st.Edges).To(Equal(3))
		Expect(st.EdgeMean).To(BeNumerically("~", 0.01, 1e-12))
		Expect(st.EdgeStd).To(BeNumerically("~", 0, 1e-12))
		Expect(st.MeanFlexibility).To(Equal(1.0))
	})

	It("writes run facts into frames", func() {
		m := build(newConfig(3, config.StrategyDelaunay, 8))
		at := time.Unix(1700000000, 0)
		f := m.Frame(surface.FrameMeta{Timestamp: at, Hostname: "lab", Elapsed: 2 * time.Second})

		Expect(f.Dim).To(Equal(3))
		Expect(f.TypeHint).To(Equal("s3"))
		Expect(f.Positions).To(HaveLen(12))
		Expect(f.Triangles).To(HaveLen(20))
		Expect(f.Seed).To(Equal(int32(8)))
		Expect(f.Hostname).To(Equal("lab"))
		Expect(f.Timestamp).To(Equal(at))
		Expect(f.Anisotropy).To(Equal([]float64{1, 1, 1}))
		Expect(f.Boundary).NotTo(BeNil())
		Expect(f.Boundary.Kind).To(Equal(boundary.KindCylinder))
	})
})

var _ = Describe("Presets", func() {
	DescribeTable("keep edges near the rest length",
		func(name string) {
			cfg := config.GetPreset(name)
			Expect(cfg).NotTo(BeNil())
			m := build(cfg)

			const steps = 2000
			for i := 0; i < steps; i++ {
				m.SetProgress(float64(i) / steps)
				if cfg.GrowthInterval > 0 && i%cfg.GrowthInterval == 0 && m.Len() < cfg.MaxPoints {
					m.AddParticle()
				}
				m.Update()
			}

			Expect(m.Validate()).To(Succeed())
			rest := cfg.Params.Attraction
			st := m.Stats()
			Expect(st.EdgeMean).To(BeNumerically(">", rest/3), "mean edge %v", st.EdgeMean)
			Expect(st.EdgeMean).To(BeNumerically("<", 3*rest), "mean edge %v", st.EdgeMean)
		},
		Entry("seals", "seals"),
		Entry("ferro", "ferro"),
		Entry("granular", "granular"),
		Entry("granular-v2", "granular-v2"),
		Entry("curve", "curve"),
		Entry("sphere", "sphere"),
		Entry("sphere-aniso", "sphere-aniso"),
	)
})

var _ = Describe("Build", func() {
	It("rejects invalid configs", func() {
		cfg := newConfig(2, config.StrategyDelaunay, 1)
		_, err := surface.Build(cfg)
		Expect(err).To(MatchError(config.ErrInvalid))
	})

	It("lists strategies per dimension", func() {
		Expect(surface.Strategies(2)).To(Equal([]string{"edge", "tree"}))
		Expect(surface.Strategies(3)).To(Equal([]string{"delaunay", "delaunay-aniso", "edge", "tree"}))
		Expect(surface.Strategies(4)).To(BeEmpty())
	})

	It("builds without a boundary", func() {
		cfg := newConfig(3, config.StrategyEdge, 1)
		cfg.Boundary.Kind = config.BoundaryNone
		m := build(cfg)
		Expect(m.Frame(surface.FrameMeta{}).Boundary).To(BeNil())
	})
})
