package services

import (
	"heavy-route-service/internal/domain"
	"strconv"
	"strings"
)

// Highway classes a heavy vehicle must not use unless configured otherwise.
var DefaultDisallowedHighways = []string{
	"residential",
	"service",
	"footway",
	"cycleway",
	"path",
	"steps",
	"pedestrian",
	"track",
	"bridleway",
}

const DefaultMinWidthMeters = 4.0

// FilterPolicy decides which edges survive heavy-vehicle filtering.
// Highway matching is exact and case-sensitive.
type FilterPolicy struct {
	Disallowed []string
	MinWidth   float64
}

func DefaultFilterPolicy() FilterPolicy {
	return FilterPolicy{
		Disallowed: append([]string(nil), DefaultDisallowedHighways...),
		MinWidth:   DefaultMinWidthMeters,
	}
}

// Counts describing one filtering pass.
type FilterReport struct {
	RemovedByType  int
	RemovedByWidth int
	RemovedNodes   int
	KeptEdges      int
	KeptNodes      int
}

// HeavyVehicleFilter removes edges unsuitable for heavy vehicles and the
// nodes left without any incident edge.
type HeavyVehicleFilter struct {
	disallowed map[string]struct{}
	minWidth   float64
}

func NewHeavyVehicleFilter(policy FilterPolicy) *HeavyVehicleFilter {
	disallowed := make(map[string]struct{}, len(policy.Disallowed))
	for _, h := range policy.Disallowed {
		disallowed[h] = struct{}{}
	}
	return &HeavyVehicleFilter{disallowed: disallowed, minWidth: policy.MinWidth}
}

// Apply returns a filtered copy of g; g itself is not modified.
//
// An edge is removed when its effective highway type is disallowed, or when
// its width parses as a number below the minimum. Unparseable widths and
// missing highway tags keep the edge.
func (f *HeavyVehicleFilter) Apply(g *domain.RoadGraph) (*domain.RoadGraph, FilterReport) {
	out := g.Clone()
	var report FilterReport

	for _, e := range g.Edges() {
		switch {
		case f.disallowedType(e.Highway):
			out.RemoveEdge(e.Ref())
			report.RemovedByType++
		case f.tooNarrow(e.Width):
			out.RemoveEdge(e.Ref())
			report.RemovedByWidth++
		}
	}

	for _, n := range out.Nodes() {
		if out.Degree(n.ID) == 0 {
			out.RemoveNode(n.ID)
			report.RemovedNodes++
		}
	}

	report.KeptEdges = out.EdgeCount()
	report.KeptNodes = out.NodeCount()
	return out, report
}

func (f *HeavyVehicleFilter) disallowedType(h domain.HighwayType) bool {
	effective, ok := h.Effective()
	if !ok {
		return false
	}
	_, found := f.disallowed[effective]
	return found
}

func (f *HeavyVehicleFilter) tooNarrow(raw string) bool {
	width, ok := parseWidth(raw)
	if !ok {
		return false
	}
	return width < f.minWidth
}

// parseWidth reads a width tag as meters. ok is false for absent or
// non-numeric values such as "narrow" or "3 m".
func parseWidth(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return w, true
}
