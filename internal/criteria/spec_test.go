package criteria

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorank/priorank-cli/api/schemas"
)

func f(v float64) *float64 { return &v }

// validDoc mirrors the full six-criterion production configuration.
func validDoc() map[string]CriterionDoc {
	return map[string]CriterionDoc{
		"prevalence": {
			Weight: 0.20,
			Scoring: ScoringDoc{
				Method:            "discrete_class_mapping",
				HandleMissingData: "zero_score",
				Mapping:           map[string]float64{"<1 / 1 000 000": 10, ">1 / 1 000": 2},
			},
		},
		"therapy_availability": {
			Weight: 0.20,
			Scoring: ScoringDoc{
				Method:            "reverse_winsorized_min_max_scaling",
				HandleMissingData: "max_score",
				Max:               10,
				ScaleFactor:       10,
			},
		},
		"trial_activity": {
			Weight: 0.25,
			Scoring: ScoringDoc{
				Method:            "winsorized_min_max_scaling",
				HandleMissingData: "zero_score",
				Max:               100,
				ScaleFactor:       10,
			},
		},
		"genetic_tractability": {
			Weight: 0.10,
			Scoring: ScoringDoc{
				Method:            "binary_monogenic",
				HandleMissingData: "zero_score",
				MonogenicScore:    f(10),
				PolygenicScore:    f(5),
				UnknownScore:      f(2),
			},
		},
		"socioeconomic_burden": {
			Weight: 0.15,
			Scoring: ScoringDoc{
				Method:            "compound_weighted",
				HandleMissingData: "zero_score",
				Components: []ComponentDoc{
					{Name: "dalys", Weight: 0.6, Scoring: ScoringDoc{Method: "winsorized_min_max_scaling", Max: 100, ScaleFactor: 10}},
					{Name: "economic_burden", Weight: 0.4, Scoring: ScoringDoc{Method: "winsorized_min_max_scaling", Max: 1000, ScaleFactor: 10}},
				},
			},
		},
		"research_capacity": {
			Weight: 0.10,
			Scoring: ScoringDoc{
				Method:            "evidence_level_mapping",
				HandleMissingData: "zero_score",
				Mapping:           map[string]float64{"High evidence": 10, "No evidence": 0},
			},
		},
	}
}

func TestCompileValid(t *testing.T) {
	spec, err := Compile(validDoc())
	require.NoError(t, err)
	require.Len(t, spec.Criteria, 6)

	// Criteria come out name-sorted for deterministic output.
	assert.Equal(t, []string{
		"genetic_tractability",
		"prevalence",
		"research_capacity",
		"socioeconomic_burden",
		"therapy_availability",
		"trial_activity",
	}, spec.Names())

	prevalence := spec.Criteria[1]
	assert.Equal(t, 0.20, prevalence.Weight)
	assert.Equal(t, MissingZeroScore, prevalence.MissingPolicy)
	assert.Equal(t, MethodDiscreteClassMapping, prevalence.Method.Kind())

	burden := spec.Criteria[3]
	compound, ok := burden.Method.(Compound)
	require.True(t, ok)
	require.Len(t, compound.Components, 2)
	assert.Equal(t, "dalys", compound.Components[0].Name)
}

func TestCompileValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(doc map[string]CriterionDoc)
		wantErr string
	}{
		{
			name: "Unknown Method",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["prevalence"]
				cd.Scoring.Method = "sigmoid_scaling"
				doc["prevalence"] = cd
			},
			wantErr: `unknown scoring method "sigmoid_scaling"`,
		},
		{
			name: "Class Mapping Without Table",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["prevalence"]
				cd.Scoring.Mapping = nil
				doc["prevalence"] = cd
			},
			wantErr: "requires a non-empty mapping table",
		},
		{
			name: "Unknown Missing Policy",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["prevalence"]
				cd.Scoring.HandleMissingData = "interpolate"
				doc["prevalence"] = cd
			},
			wantErr: `unknown missing-data policy "interpolate"`,
		},
		{
			name: "Weight Out Of Range",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["prevalence"]
				cd.Weight = 1.5
				doc["prevalence"] = cd
			},
			wantErr: "outside [0,1]",
		},
		{
			name: "Winsorized Without Max",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["trial_activity"]
				cd.Scoring.Max = 0
				doc["trial_activity"] = cd
			},
			wantErr: "requires max > 0",
		},
		{
			name: "Monogenic Missing Param",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["genetic_tractability"]
				cd.Scoring.UnknownScore = nil
				doc["genetic_tractability"] = cd
			},
			wantErr: "requires monogenic_score, polygenic_score and unknown_score",
		},
		{
			name: "Compound Without Components",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["socioeconomic_burden"]
				cd.Scoring.Components = nil
				doc["socioeconomic_burden"] = cd
			},
			wantErr: "requires at least one component",
		},
		{
			name: "Compound Component Weights Must Sum To One",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["socioeconomic_burden"]
				cd.Scoring.Components[0].Weight = 0.5
				doc["socioeconomic_burden"] = cd
			},
			wantErr: "component weights must sum to 1.0",
		},
		{
			name: "Compound Cannot Nest",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["socioeconomic_burden"]
				cd.Scoring.Components = []ComponentDoc{
					{Name: "inner", Weight: 1.0, Scoring: ScoringDoc{Method: "compound_weighted"}},
				}
				doc["socioeconomic_burden"] = cd
			},
			wantErr: "components cannot nest",
		},
		{
			name: "Duplicate Component",
			mutate: func(doc map[string]CriterionDoc) {
				cd := doc["socioeconomic_burden"]
				cd.Scoring.Components[1].Name = "dalys"
				doc["socioeconomic_burden"] = cd
			},
			wantErr: `duplicate component "dalys"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := validDoc()
			tc.mutate(doc)
			spec, err := Compile(doc)
			require.Error(t, err)
			assert.Nil(t, spec)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCompileWeightSum(t *testing.T) {
	doc := validDoc()
	cd := doc["prevalence"]
	cd.Weight = 0.10 // total now 0.90
	doc["prevalence"] = cd

	_, err := Compile(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "criterion weights must sum to 1.0")
}

func TestCompileEmpty(t *testing.T) {
	_, err := Compile(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "criteria configuration is empty")
}

func TestCompileMockValue(t *testing.T) {
	doc := validDoc()
	cd := doc["prevalence"]
	cd.Mock = true
	cd.MockValue = "<1 / 1 000 000"
	doc["prevalence"] = cd

	spec, err := Compile(doc)
	require.NoError(t, err)

	var prevalence CriterionConfig
	for _, c := range spec.Criteria {
		if c.Name == "prevalence" {
			prevalence = c
		}
	}
	assert.True(t, prevalence.Mock)
	assert.Equal(t, schemas.Lbl("<1 / 1 000 000"), prevalence.MockValue)
}

func TestLoadFilePreservesLabelCase(t *testing.T) {
	yamlConfig := `
logger:
  level: info
criteria:
  research_capacity:
    weight: 1.0
    scoring:
      method: evidence_level_mapping
      handle_missing_data: zero_score
      mapping:
        "High evidence": 10
        "Some evidence": 5
        "No evidence": 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o644))

	spec, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, spec.Criteria, 1)

	mapping, ok := spec.Criteria[0].Method.(ClassMapping)
	require.True(t, ok)
	// Labels must survive verbatim; this is why the section bypasses viper.
	assert.Equal(t, 10.0, mapping.Table["High evidence"])
	_, lowercased := mapping.Table["high evidence"]
	assert.False(t, lowercased)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCompileMockValueInvalidType(t *testing.T) {
	doc := validDoc()
	cd := doc["prevalence"]
	cd.Mock = true
	cd.MockValue = []any{"not", "supported"}
	doc["prevalence"] = cd

	_, err := Compile(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mock_value")
}
