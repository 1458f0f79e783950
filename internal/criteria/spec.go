// Package criteria compiles the declarative criteria configuration into a
// validated, strongly-typed specification consumed by the scoring engine.
package criteria

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/priorank/priorank-cli/api/schemas"
)

// MethodKind enumerates the closed set of scoring strategies.
type MethodKind string

const (
	MethodDiscreteClassMapping    MethodKind = "discrete_class_mapping"
	MethodEvidenceLevelMapping    MethodKind = "evidence_level_mapping"
	MethodWinsorizedMinMaxScaling MethodKind = "winsorized_min_max_scaling"
	MethodReverseWinsorizedMinMax MethodKind = "reverse_winsorized_min_max_scaling"
	MethodBinaryMonogenic         MethodKind = "binary_monogenic"
	MethodCompoundWeighted        MethodKind = "compound_weighted"
)

// MissingPolicy selects the fallback score applied when a raw value is absent
// or cannot be interpreted by the configured method.
type MissingPolicy string

const (
	// MissingZeroScore scores an unavailable value as 0.
	MissingZeroScore MissingPolicy = "zero_score"
	// MissingMaxScore scores an unavailable value as the method's maximum.
	// Used where absence of negative evidence is favorable (e.g., no approved
	// therapies implies maximal unmet need).
	MissingMaxScore MissingPolicy = "max_score"
)

// weightTolerance bounds the accepted deviation of a weight sum from 1.0.
const weightTolerance = 1e-6

// Method is the closed tagged variant over the scoring strategies. Each
// implementation carries its own parameter payload; dispatch happens in the
// scoring package via a type switch.
type Method interface {
	Kind() MethodKind
}

// ClassMapping scores a category label by exact-match table lookup. It backs
// both discrete_class_mapping and evidence_level_mapping; the two names exist
// for configuration clarity only.
type ClassMapping struct {
	Name  MethodKind
	Table map[string]float64
}

func (m ClassMapping) Kind() MethodKind { return m.Name }

// Winsorized scores a non-negative numeric value by clipping it at Max and
// rescaling linearly to [0, ScaleFactor]. With Reverse set the scale is
// inverted, for criteria where less is better.
type Winsorized struct {
	Max         float64
	ScaleFactor float64
	Reverse     bool
}

func (m Winsorized) Kind() MethodKind {
	if m.Reverse {
		return MethodReverseWinsorizedMinMax
	}
	return MethodWinsorizedMinMaxScaling
}

// Monogenic is a three-way classifier over a gene count: exactly one gene,
// more than one, or unknown.
type Monogenic struct {
	MonogenicScore float64
	PolygenicScore float64
	UnknownScore   float64
}

func (m Monogenic) Kind() MethodKind { return MethodBinaryMonogenic }

// Compound scores a record-shaped raw value by scoring each sub-component
// with its own method and combining the results as a weighted sum.
type Compound struct {
	Components []Component
}

func (m Compound) Kind() MethodKind { return MethodCompoundWeighted }

// Component is one weighted sub-component of a Compound method.
type Component struct {
	Name   string
	Weight float64
	Method Method
}

// CriterionConfig is one validated criterion of the specification.
type CriterionConfig struct {
	Name          string
	Weight        float64
	Method        Method
	MissingPolicy MissingPolicy
	// DataPath records where upstream sources raw values from. The engine
	// carries it for traceability but never reads it.
	DataPath string
	// Mock substitutes MockValue as every disease's raw value before the
	// engine runs. Resolved by the dataset layer, not by the engine.
	Mock      bool
	MockValue schemas.RawValue
}

// Spec is the compiled criteria specification. Criteria are held in
// deterministic (name-sorted) order so every run over the same configuration
// produces identical output.
type Spec struct {
	Criteria []CriterionConfig
}

// Names returns the criterion names in specification order.
func (s *Spec) Names() []string {
	names := make([]string, len(s.Criteria))
	for i, c := range s.Criteria {
		names[i] = c.Name
	}
	return names
}

// -- Configuration document shapes (as unmarshalled by viper) --

// CriterionDoc mirrors one entry of the `criteria` config section.
type CriterionDoc struct {
	Weight    float64    `mapstructure:"weight" yaml:"weight"`
	DataPath  string     `mapstructure:"data_path" yaml:"data_path"`
	Mock      bool       `mapstructure:"mock" yaml:"mock"`
	MockValue any        `mapstructure:"mock_value" yaml:"mock_value"`
	Scoring   ScoringDoc `mapstructure:"scoring" yaml:"scoring"`
}

// ScoringDoc mirrors the `scoring` block of a criterion or sub-component.
// Which parameter fields are meaningful depends on Method.
type ScoringDoc struct {
	Method            string             `mapstructure:"method" yaml:"method"`
	HandleMissingData string             `mapstructure:"handle_missing_data" yaml:"handle_missing_data"`
	Mapping           map[string]float64 `mapstructure:"mapping" yaml:"mapping"`
	Max               float64            `mapstructure:"max" yaml:"max"`
	ScaleFactor       float64            `mapstructure:"scale_factor" yaml:"scale_factor"`
	MonogenicScore    *float64           `mapstructure:"monogenic_score" yaml:"monogenic_score"`
	PolygenicScore    *float64           `mapstructure:"polygenic_score" yaml:"polygenic_score"`
	UnknownScore      *float64           `mapstructure:"unknown_score" yaml:"unknown_score"`
	Components        []ComponentDoc     `mapstructure:"components" yaml:"components"`
}

// ComponentDoc mirrors one sub-component of a compound_weighted criterion.
type ComponentDoc struct {
	Name    string     `mapstructure:"name" yaml:"name"`
	Weight  float64    `mapstructure:"weight" yaml:"weight"`
	Scoring ScoringDoc `mapstructure:"scoring" yaml:"scoring"`
}

// configDocument is the subset of the configuration file this package owns.
type configDocument struct {
	Criteria map[string]CriterionDoc `yaml:"criteria"`
}

// LoadFile reads the criteria section straight from the YAML config file and
// compiles it. Viper lowercases every key it manages, which would corrupt
// case-sensitive mapping-table labels ("High evidence" vs "high evidence"),
// so this section bypasses viper and is decoded verbatim.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria configuration %s: %w", path, err)
	}
	var doc configDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse criteria configuration %s: %w", path, err)
	}
	return Compile(doc.Criteria)
}

// Compile validates the raw criteria document and produces a Spec. Any
// failure is fatal and names the offending criterion; no scoring must happen
// against a document that failed compilation.
func Compile(doc map[string]CriterionDoc) (*Spec, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("criteria configuration is empty")
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	spec := &Spec{Criteria: make([]CriterionConfig, 0, len(doc))}
	weightSum := 0.0
	for _, name := range names {
		cd := doc[name]
		cfg, err := compileCriterion(name, cd)
		if err != nil {
			return nil, err
		}
		weightSum += cfg.Weight
		spec.Criteria = append(spec.Criteria, cfg)
	}

	if math.Abs(weightSum-1.0) > weightTolerance {
		return nil, fmt.Errorf("criterion weights must sum to 1.0, got %.6f", weightSum)
	}
	return spec, nil
}

func compileCriterion(name string, cd CriterionDoc) (CriterionConfig, error) {
	if cd.Weight < 0 || cd.Weight > 1 {
		return CriterionConfig{}, fmt.Errorf("criterion %q: weight %v is outside [0,1]", name, cd.Weight)
	}

	policy := MissingPolicy(cd.Scoring.HandleMissingData)
	switch policy {
	case MissingZeroScore, MissingMaxScore:
	default:
		return CriterionConfig{}, fmt.Errorf("criterion %q: unknown missing-data policy %q", name, cd.Scoring.HandleMissingData)
	}

	method, err := compileMethod(name, cd.Scoring, true)
	if err != nil {
		return CriterionConfig{}, err
	}

	cfg := CriterionConfig{
		Name:          name,
		Weight:        cd.Weight,
		Method:        method,
		MissingPolicy: policy,
		DataPath:      cd.DataPath,
		Mock:          cd.Mock,
	}
	if cd.Mock {
		rv, err := schemas.RawValueOf(cd.MockValue)
		if err != nil {
			return CriterionConfig{}, fmt.Errorf("criterion %q: invalid mock_value: %w", name, err)
		}
		cfg.MockValue = rv
	}
	return cfg, nil
}

// compileMethod validates the method parameters for one scoring block.
// allowCompound is false for sub-components: compound criteria do not nest.
func compileMethod(criterion string, sd ScoringDoc, allowCompound bool) (Method, error) {
	switch MethodKind(sd.Method) {
	case MethodDiscreteClassMapping, MethodEvidenceLevelMapping:
		if len(sd.Mapping) == 0 {
			return nil, fmt.Errorf("criterion %q: method %s requires a non-empty mapping table", criterion, sd.Method)
		}
		return ClassMapping{Name: MethodKind(sd.Method), Table: sd.Mapping}, nil

	case MethodWinsorizedMinMaxScaling, MethodReverseWinsorizedMinMax:
		if sd.Max <= 0 {
			return nil, fmt.Errorf("criterion %q: method %s requires max > 0, got %v", criterion, sd.Method, sd.Max)
		}
		if sd.ScaleFactor <= 0 {
			return nil, fmt.Errorf("criterion %q: method %s requires scale_factor > 0, got %v", criterion, sd.Method, sd.ScaleFactor)
		}
		return Winsorized{
			Max:         sd.Max,
			ScaleFactor: sd.ScaleFactor,
			Reverse:     MethodKind(sd.Method) == MethodReverseWinsorizedMinMax,
		}, nil

	case MethodBinaryMonogenic:
		if sd.MonogenicScore == nil || sd.PolygenicScore == nil || sd.UnknownScore == nil {
			return nil, fmt.Errorf("criterion %q: method %s requires monogenic_score, polygenic_score and unknown_score", criterion, sd.Method)
		}
		return Monogenic{
			MonogenicScore: *sd.MonogenicScore,
			PolygenicScore: *sd.PolygenicScore,
			UnknownScore:   *sd.UnknownScore,
		}, nil

	case MethodCompoundWeighted:
		if !allowCompound {
			return nil, fmt.Errorf("criterion %q: compound_weighted components cannot nest", criterion)
		}
		if len(sd.Components) == 0 {
			return nil, fmt.Errorf("criterion %q: method %s requires at least one component", criterion, sd.Method)
		}
		comps := make([]Component, 0, len(sd.Components))
		seen := make(map[string]bool, len(sd.Components))
		weightSum := 0.0
		for i, comp := range sd.Components {
			if comp.Name == "" {
				return nil, fmt.Errorf("criterion %q: component %d has no name", criterion, i)
			}
			if seen[comp.Name] {
				return nil, fmt.Errorf("criterion %q: duplicate component %q", criterion, comp.Name)
			}
			seen[comp.Name] = true
			if comp.Weight < 0 || comp.Weight > 1 {
				return nil, fmt.Errorf("criterion %q: component %q weight %v is outside [0,1]", criterion, comp.Name, comp.Weight)
			}
			m, err := compileMethod(criterion, comp.Scoring, false)
			if err != nil {
				return nil, err
			}
			weightSum += comp.Weight
			comps = append(comps, Component{Name: comp.Name, Weight: comp.Weight, Method: m})
		}
		if math.Abs(weightSum-1.0) > weightTolerance {
			return nil, fmt.Errorf("criterion %q: component weights must sum to 1.0, got %.6f", criterion, weightSum)
		}
		return Compound{Components: comps}, nil

	default:
		return nil, fmt.Errorf("criterion %q: unknown scoring method %q", criterion, sd.Method)
	}
}
