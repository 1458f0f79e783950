package schemas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// -- Disease Schemas --

// Disease identifies one entry in the curated disease population. Instances
// are created by the dataset loader and consumed read-only by the engine.
type Disease struct {
	Code string `json:"code"` // Stable identifier (e.g., an ORPHA or OMIM code).
	Name string `json:"name"` // Human-readable display name.
}

// -- Raw Value Schemas --

// RawKind discriminates the shape of a raw criterion value.
type RawKind int

const (
	// RawAbsent marks a value the upstream ETL could not supply.
	RawAbsent RawKind = iota
	// RawNumber is a numeric value (count, measurement).
	RawNumber
	// RawLabel is a category label matched exactly against a mapping table.
	RawLabel
	// RawRecord is a compound value holding one field per sub-component.
	RawRecord
)

// RawValue is the per-(disease, criterion) input to the scoring engine. It is
// supplied fully resolved by upstream collaborators; the engine never fetches
// data itself. The zero value is the absent sentinel.
type RawValue struct {
	Kind   RawKind
	Number float64
	Label  string
	Fields map[string]RawValue
}

// Absent returns the "no data available" sentinel.
func Absent() RawValue { return RawValue{Kind: RawAbsent} }

// Num wraps a numeric raw value.
func Num(v float64) RawValue { return RawValue{Kind: RawNumber, Number: v} }

// Lbl wraps a category-label raw value.
func Lbl(s string) RawValue { return RawValue{Kind: RawLabel, Label: s} }

// Rec wraps a compound raw value.
func Rec(fields map[string]RawValue) RawValue {
	return RawValue{Kind: RawRecord, Fields: fields}
}

// RawValueOf converts a loosely-typed value (as produced by YAML/JSON
// decoding, e.g. a mock_value from the config file) into a RawValue.
func RawValueOf(v any) (RawValue, error) {
	switch t := v.(type) {
	case nil:
		return Absent(), nil
	case float64:
		return Num(t), nil
	case float32:
		return Num(float64(t)), nil
	case int:
		return Num(float64(t)), nil
	case int64:
		return Num(float64(t)), nil
	case string:
		return Lbl(t), nil
	case map[string]any:
		fields := make(map[string]RawValue, len(t))
		for k, fv := range t {
			rv, err := RawValueOf(fv)
			if err != nil {
				return Absent(), fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = rv
		}
		return Rec(fields), nil
	default:
		return Absent(), fmt.Errorf("unsupported raw value type %T", v)
	}
}

// UnmarshalJSON maps the wire shape onto the RawValue variants: null becomes
// the absent sentinel, numbers and strings map directly, and objects become
// compound records.
func (r *RawValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = Absent()
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*r = Lbl(s)
	case '{':
		var fields map[string]RawValue
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		*r = Rec(fields)
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("raw value must be null, a number, a string, or an object: %w", err)
		}
		*r = Num(n)
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (r RawValue) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RawAbsent:
		return []byte("null"), nil
	case RawNumber:
		return json.Marshal(r.Number)
	case RawLabel:
		return json.Marshal(r.Label)
	case RawRecord:
		return json.Marshal(r.Fields)
	default:
		return nil, fmt.Errorf("unknown raw value kind %d", r.Kind)
	}
}

// RawValueTable maps disease code -> criterion name -> raw value. A missing
// key at either level is equivalent to the absent sentinel.
type RawValueTable map[string]map[string]RawValue

// Lookup returns the raw value for a (disease, criterion) pair, substituting
// the absent sentinel for missing entries.
func (t RawValueTable) Lookup(diseaseCode, criterion string) RawValue {
	byCriterion, ok := t[diseaseCode]
	if !ok {
		return Absent()
	}
	rv, ok := byCriterion[criterion]
	if !ok {
		return Absent()
	}
	return rv
}

// -- Result Schemas --

// CriterionScore is the output of evaluating one criterion for one disease.
// Value is bounded by the canonical [0,10] score range. When Missing is true,
// Policy records which fallback produced the value.
type CriterionScore struct {
	Criterion string  `json:"criterion"`
	Value     float64 `json:"value"`
	Missing   bool    `json:"missing"`
	Method    string  `json:"method"`
	Policy    string  `json:"policy,omitempty"`
}

// CompositeResult is the final per-disease artifact: the per-criterion score
// vector in criterion order, the weighted composite, and the assigned rank
// (1 = highest priority).
type CompositeResult struct {
	DiseaseCode string           `json:"disease_code"`
	DiseaseName string           `json:"disease_name"`
	Scores      []CriterionScore `json:"per_criterion_scores"`
	Composite   float64          `json:"composite_score"`
	Rank        int              `json:"rank"`
}

// Score returns the score recorded for the named criterion, if present.
func (r *CompositeResult) Score(criterion string) (CriterionScore, bool) {
	for _, s := range r.Scores {
		if s.Criterion == criterion {
			return s, true
		}
	}
	return CriterionScore{}, false
}

// RankingEnvelope is the top-level wrapper handed to report writers.
type RankingEnvelope struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Criteria    []string          `json:"criteria"`
	Results     []CompositeResult `json:"results"`
}
