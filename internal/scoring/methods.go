// Package scoring implements the pure scoring strategies, the shared numeric
// normalizer, and the per-criterion evaluator. Nothing in this package has
// side effects; identical inputs always produce identical scores.
package scoring

import (
	"errors"
	"fmt"

	"github.com/priorank/priorank-cli/api/schemas"
	"github.com/priorank/priorank-cli/internal/criteria"
)

// ErrUnscorable reports a raw value the configured method cannot interpret
// (unmapped label, non-numeric value for a numeric method). The evaluator
// resolves it via the criterion's missing-data policy; it never aborts a run.
var ErrUnscorable = errors.New("raw value cannot be scored by the configured method")

// Apply dispatches raw to the strategy m and returns its score, conceptually
// in [0,10]. Absent sentinels are the evaluator's concern; Apply treats them
// like any other uninterpretable value and reports ErrUnscorable.
func Apply(m criteria.Method, raw schemas.RawValue) (float64, error) {
	switch method := m.(type) {
	case criteria.ClassMapping:
		return applyClassMapping(method, raw)
	case criteria.Winsorized:
		return applyWinsorized(method, raw)
	case criteria.Monogenic:
		return applyMonogenic(method, raw), nil
	case criteria.Compound:
		return applyCompound(method, raw)
	default:
		// Unreachable after spec compilation; the method set is closed.
		return 0, fmt.Errorf("unsupported scoring method %T", m)
	}
}

func applyClassMapping(m criteria.ClassMapping, raw schemas.RawValue) (float64, error) {
	if raw.Kind != schemas.RawLabel {
		return 0, fmt.Errorf("%s expects a category label: %w", m.Name, ErrUnscorable)
	}
	score, ok := m.Table[raw.Label]
	if !ok {
		return 0, fmt.Errorf("label %q is not in the mapping table: %w", raw.Label, ErrUnscorable)
	}
	return score, nil
}

func applyWinsorized(m criteria.Winsorized, raw schemas.RawValue) (float64, error) {
	if raw.Kind != schemas.RawNumber || raw.Number < 0 {
		return 0, fmt.Errorf("%s expects a non-negative number: %w", m.Kind(), ErrUnscorable)
	}
	clipped := Clip(raw.Number, m.Max)
	score := LinearRescale(clipped, m.Max, m.ScaleFactor)
	if m.Reverse {
		score = m.ScaleFactor - score
	}
	return score, nil
}

// applyMonogenic never reports ErrUnscorable: an unresolvable gene count is
// by definition the "unknown" class. A count of zero also scores as unknown;
// the engine receives no separate "confirmed zero genes" signal.
func applyMonogenic(m criteria.Monogenic, raw schemas.RawValue) float64 {
	if raw.Kind != schemas.RawNumber {
		return m.UnknownScore
	}
	switch {
	case raw.Number == 1:
		return m.MonogenicScore
	case raw.Number > 1:
		return m.PolygenicScore
	default:
		return m.UnknownScore
	}
}

// applyCompound scores each sub-component independently and combines the
// results as a weighted sum. When some but not all sub-components are
// missing, the weights of the present ones are re-normalized to sum to 1, so
// partial data still yields a full-range score. Only when every sub-component
// is missing does the criterion-level missing-data policy take over.
func applyCompound(m criteria.Compound, raw schemas.RawValue) (float64, error) {
	if raw.Kind != schemas.RawRecord {
		return 0, fmt.Errorf("compound_weighted expects a record value: %w", ErrUnscorable)
	}

	sum := 0.0
	weightSum := 0.0
	for _, comp := range m.Components {
		field, ok := raw.Fields[comp.Name]
		if !ok || field.Kind == schemas.RawAbsent {
			continue
		}
		score, err := Apply(comp.Method, field)
		if err != nil {
			if errors.Is(err, ErrUnscorable) {
				continue
			}
			return 0, err
		}
		sum += comp.Weight * score
		weightSum += comp.Weight
	}

	if weightSum == 0 {
		return 0, fmt.Errorf("all compound components are missing: %w", ErrUnscorable)
	}
	return sum / weightSum, nil
}
