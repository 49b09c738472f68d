package proof

import "sort"

// CircuitRegistry holds the set of circuit types the platform recognizes.
// Submissions naming an unknown circuit are rejected up front instead of
// failing verification later.
type CircuitRegistry struct {
	circuits map[string]struct{}
}

// NewCircuitRegistry builds a registry from the configured circuit types.
func NewCircuitRegistry(circuitTypes []string) *CircuitRegistry {
	set := make(map[string]struct{}, len(circuitTypes))
	for _, c := range circuitTypes {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return &CircuitRegistry{circuits: set}
}

// Recognized reports whether the circuit type is supported.
func (r *CircuitRegistry) Recognized(circuitType string) bool {
	_, ok := r.circuits[circuitType]
	return ok
}

// List returns the supported circuit types in sorted order.
func (r *CircuitRegistry) List() []string {
	out := make([]string, 0, len(r.circuits))
	for c := range r.circuits {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
