package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/priorank/priorank-cli/api/schemas"
)

// CSVReporter renders the ranking as a flat table: one row per disease, one
// column per criterion, plus rank, identity, composite score, and a column
// listing the criteria that fell back to their missing-data policy.
type CSVReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
}

// NewCSVReporter creates a CSVReporter. It takes ownership of the writer.
func NewCSVReporter(writer io.WriteCloser, logger *zap.Logger) *CSVReporter {
	return &CSVReporter{
		writer: writer,
		logger: logger.With(zap.String("component", "csv_reporter")),
	}
}

// Write renders the envelope as CSV. Criterion columns follow the
// specification order recorded in the envelope.
func (r *CSVReporter) Write(envelope *schemas.RankingEnvelope) error {
	w := csv.NewWriter(r.writer)

	header := append([]string{"rank", "disease_code", "disease_name", "composite_score"}, envelope.Criteria...)
	header = append(header, "missing_criteria")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range envelope.Results {
		row := make([]string, 0, len(header))
		row = append(row,
			strconv.Itoa(result.Rank),
			result.DiseaseCode,
			result.DiseaseName,
			formatScore(result.Composite),
		)

		var missing []string
		for _, name := range envelope.Criteria {
			score, ok := result.Score(name)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatScore(score.Value))
			if score.Missing {
				missing = append(missing, name)
			}
		}
		row = append(row, strings.Join(missing, ";"))

		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", result.DiseaseCode, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV report: %w", err)
	}
	r.logger.Debug("CSV report written", zap.Int("results", len(envelope.Results)))
	return nil
}

// Close releases the underlying writer.
func (r *CSVReporter) Close() error {
	return r.writer.Close()
}

// formatScore renders scores with stable precision so reruns produce
// byte-identical reports.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
