package scoring

import (
	"github.com/priorank/priorank-cli/api/schemas"
	"github.com/priorank/priorank-cli/internal/criteria"
)

// Canonical score range shared by every method.
const (
	ScoreMin = 0.0
	ScoreMax = 10.0
)

// Evaluate scores one disease's raw value for one criterion. An absent value,
// or one the configured method cannot interpret, resolves to the criterion's
// missing-data policy. Method results are clamped into [ScoreMin, ScoreMax]
// so a misconfigured mapping table or max cannot leak an out-of-range score.
func Evaluate(raw schemas.RawValue, cfg criteria.CriterionConfig) schemas.CriterionScore {
	if raw.Kind == schemas.RawAbsent {
		return missingScore(cfg)
	}

	value, err := Apply(cfg.Method, raw)
	if err != nil {
		// Recovered locally per the error taxonomy: a single bad value must
		// never abort the run.
		return missingScore(cfg)
	}

	return schemas.CriterionScore{
		Criterion: cfg.Name,
		Value:     clamp(value),
		Method:    string(cfg.Method.Kind()),
	}
}

func missingScore(cfg criteria.CriterionConfig) schemas.CriterionScore {
	value := ScoreMin
	if cfg.MissingPolicy == criteria.MissingMaxScore {
		value = ScoreMax
	}
	return schemas.CriterionScore{
		Criterion: cfg.Name,
		Value:     value,
		Missing:   true,
		Method:    string(cfg.Method.Kind()),
		Policy:    string(cfg.MissingPolicy),
	}
}

func clamp(v float64) float64 {
	if v < ScoreMin {
		return ScoreMin
	}
	if v > ScoreMax {
		return ScoreMax
	}
	return v
}
