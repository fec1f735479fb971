package graph

import (
	"github.com/ScottSallinen/snapolap/utils"
	"github.com/rs/zerolog/log"
)

type Stats struct {
	Vertices     uint32
	Edges        uint64
	Sinks        uint32 // Vertices with no out-edges.
	SelfLoops    uint64
	MaxOutDegree uint32
	MedianOutDeg uint32
	MaxInDegree  uint32 // Zero without an in-edge index.
	MedianInDeg  uint32
}

func (g *GraphView) ComputeStats() (s Stats) {
	s.Vertices = g.numVertices
	s.Edges = g.numEdges
	outDegs := make([]uint32, g.numVertices)
	var inDegs []uint32
	if g.HasInEdges() {
		inDegs = make([]uint32, g.numVertices)
	}
	for v := uint32(0); v < g.numVertices; v++ {
		outDegs[v] = g.OutDegree(v)
		if outDegs[v] == 0 {
			s.Sinks++
		}
		s.MaxOutDegree = max(s.MaxOutDegree, outDegs[v])
		for _, e := range g.OutEdges(v) {
			if e.Didx == v {
				s.SelfLoops++
			}
		}
		if inDegs != nil {
			inDegs[v] = g.InDegree(v)
			s.MaxInDegree = max(s.MaxInDegree, inDegs[v])
		}
	}
	if g.numVertices > 0 {
		s.MedianOutDeg = utils.Median(outDegs)
		if inDegs != nil {
			s.MedianInDeg = utils.Median(inDegs)
		}
	}

	log.Info().Msg("----GraphStats----")
	log.Info().Msg("Vertices " + utils.V(s.Vertices))
	if s.Vertices > 0 {
		log.Info().Msg("Sinks " + utils.V(s.Sinks) + " pct:" + utils.F("%.3f", float64(s.Sinks)*100.0/float64(s.Vertices)))
	}
	log.Info().Msg("Edges " + utils.V(s.Edges) + " SelfLoops " + utils.V(s.SelfLoops))
	log.Info().Msg("MaxOutDeg " + utils.V(s.MaxOutDegree) + " MedianOutDeg " + utils.V(s.MedianOutDeg))
	if inDegs != nil {
		log.Info().Msg("MaxInDeg " + utils.V(s.MaxInDegree) + " MedianInDeg " + utils.V(s.MedianInDeg))
	}
	log.Info().Msg("----EndStats----")
	return s
}
