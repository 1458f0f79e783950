package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawValueUnmarshalJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  RawValue
	}{
		{"Null", `null`, Absent()},
		{"Number", `12.5`, Num(12.5)},
		{"Integer", `3`, Num(3)},
		{"Label", `"1-9 / 100 000"`, Lbl("1-9 / 100 000")},
		{"Record", `{"dalys": 40, "note": "est"}`, Rec(map[string]RawValue{
			"dalys": Num(40),
			"note":  Lbl("est"),
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rv RawValue
			require.NoError(t, json.Unmarshal([]byte(tc.input), &rv))
			assert.Equal(t, tc.want, rv)
		})
	}

	t.Run("Invalid Shape", func(t *testing.T) {
		var rv RawValue
		assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &rv))
	})
}

func TestRawValueMarshalRoundTrip(t *testing.T) {
	values := []RawValue{
		Absent(),
		Num(7),
		Lbl("High evidence"),
		Rec(map[string]RawValue{"dalys": Num(12)}),
	}
	for _, rv := range values {
		data, err := json.Marshal(rv)
		require.NoError(t, err)
		var back RawValue
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, rv, back)
	}
}

func TestRawValueOf(t *testing.T) {
	rv, err := RawValueOf("label")
	require.NoError(t, err)
	assert.Equal(t, Lbl("label"), rv)

	rv, err = RawValueOf(3)
	require.NoError(t, err)
	assert.Equal(t, Num(3), rv)

	rv, err = RawValueOf(map[string]any{"dalys": 40.0})
	require.NoError(t, err)
	assert.Equal(t, Rec(map[string]RawValue{"dalys": Num(40)}), rv)

	rv, err = RawValueOf(nil)
	require.NoError(t, err)
	assert.Equal(t, Absent(), rv)

	_, err = RawValueOf([]string{"nope"})
	assert.Error(t, err)
}

func TestRawValueTableLookup(t *testing.T) {
	table := RawValueTable{
		"D1": {"prevalence": Lbl("rare")},
	}
	assert.Equal(t, Lbl("rare"), table.Lookup("D1", "prevalence"))
	assert.Equal(t, Absent(), table.Lookup("D1", "other"))
	assert.Equal(t, Absent(), table.Lookup("D2", "prevalence"))
}

func TestCompositeResultScore(t *testing.T) {
	result := CompositeResult{
		Scores: []CriterionScore{
			{Criterion: "prevalence", Value: 8},
			{Criterion: "trial_activity", Value: 2},
		},
	}
	score, ok := result.Score("trial_activity")
	require.True(t, ok)
	assert.Equal(t, 2.0, score.Value)

	_, ok = result.Score("unknown")
	assert.False(t, ok)
}
