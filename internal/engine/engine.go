// Package engine reduces per-criterion scores to weighted composites and
// assigns ranks over the full disease population.
package engine

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/priorank/priorank-cli/api/schemas"
	"github.com/priorank/priorank-cli/internal/criteria"
	"github.com/priorank/priorank-cli/internal/scoring"
)

// Engine evaluates every disease against the compiled criteria specification
// and produces the ordered CompositeResult list. It is stateless across runs;
// identical inputs yield identical output.
type Engine struct {
	spec        *criteria.Spec
	logger      *zap.Logger
	concurrency int
}

// New creates an Engine. concurrency bounds the per-disease evaluation pool;
// values below 1 fall back to serial evaluation.
func New(spec *criteria.Spec, logger *zap.Logger, concurrency int) (*Engine, error) {
	if spec == nil {
		return nil, errors.New("criteria spec cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{
		spec:        spec,
		logger:      logger.With(zap.String("component", "engine")),
		concurrency: concurrency,
	}, nil
}

// Rank scores all diseases and returns them ordered by descending composite
// score with ranks assigned 1..N. Evaluation of individual diseases is
// independent and side-effect-free, so it runs on a bounded worker pool;
// ranking is the barrier that waits for every evaluation.
//
// Ties on composite score keep their relative input order (stable sort), so
// reruns over the same inputs are reproducible byte for byte.
func (e *Engine) Rank(ctx context.Context, diseases []schemas.Disease, values schemas.RawValueTable) ([]schemas.CompositeResult, error) {
	e.logger.Info("Scoring disease population",
		zap.Int("diseases", len(diseases)),
		zap.Int("criteria", len(e.spec.Criteria)),
		zap.Int("concurrency", e.concurrency),
	)

	results := make([]schemas.CompositeResult, len(diseases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, d := range diseases {
		i, d := i, d
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.evaluateDisease(d, values)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Composite > results[j].Composite
	})
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// evaluateDisease builds one disease's score vector and composite. The
// composite is the weighted sum of per-criterion scores; weight validation is
// the spec compiler's responsibility, not repeated here.
func (e *Engine) evaluateDisease(d schemas.Disease, values schemas.RawValueTable) schemas.CompositeResult {
	scores := make([]schemas.CriterionScore, 0, len(e.spec.Criteria))
	composite := 0.0
	for _, cfg := range e.spec.Criteria {
		cs := scoring.Evaluate(values.Lookup(d.Code, cfg.Name), cfg)
		composite += cfg.Weight * cs.Value
		scores = append(scores, cs)
	}

	e.logger.Debug("Disease scored",
		zap.String("disease", d.Code),
		zap.Float64("composite", composite),
	)

	return schemas.CompositeResult{
		DiseaseCode: d.Code,
		DiseaseName: d.Name,
		Scores:      scores,
		Composite:   composite,
	}
}
