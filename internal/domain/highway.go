package domain

import "strings"

// HighwayType is the road classification of an edge. OSM data carries either
// a single value or, after ways are merged, several values for one edge.
type HighwayType struct {
	values   []string
	multiple bool
}

func SingleHighway(value string) HighwayType {
	return HighwayType{values: []string{value}}
}

func MultipleHighway(values ...string) HighwayType {
	cp := make([]string, len(values))
	copy(cp, values)
	return HighwayType{values: cp, multiple: true}
}

// ParseHighway splits a raw tag on ';', the OSM separator for multiple values.
func ParseHighway(raw string) HighwayType {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return HighwayType{}
	}

	parts := strings.Split(raw, ";")
	if len(parts) == 1 {
		return SingleHighway(raw)
	}

	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 1 {
		return SingleHighway(values[0])
	}
	return MultipleHighway(values...)
}

func (h HighwayType) IsMultiple() bool { return h.multiple }

func (h HighwayType) Values() []string {
	cp := make([]string, len(h.values))
	copy(cp, h.values)
	return cp
}

// Effective returns the single classification used for filtering decisions.
// For multiple values the first one wins. This is a policy simplification:
// the remaining classifications are ignored.
func (h HighwayType) Effective() (string, bool) {
	if len(h.values) == 0 || h.values[0] == "" {
		return "", false
	}
	return h.values[0], true
}

func (h HighwayType) String() string {
	if h.multiple {
		return "[" + strings.Join(h.values, ",") + "]"
	}
	v, _ := h.Effective()
	return v
}
