// Package reporting renders the ordered ranking results to external formats.
// The engine's contract ends at the ordered CompositeResult list; everything
// here is presentation.
package reporting

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/priorank/priorank-cli/api/schemas"
)

// Reporter writes a complete ranking envelope to an output.
type Reporter interface {
	// Write renders the envelope. A reporter is single-shot: Write is called
	// once per run.
	Write(envelope *schemas.RankingEnvelope) error
	// Close finalizes the report and releases the underlying writer.
	Close() error
}

// nopWriteCloser wraps an io.Writer with a no-op Close, so stdout is never
// closed by a reporter.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error { return nil }

// New creates a reporter for the requested format writing to outputPath.
// An empty path or "stdout" writes to standard output.
func New(format, outputPath string, logger *zap.Logger) (Reporter, error) {
	var writer io.WriteCloser
	isStdout := outputPath == "" || outputPath == "stdout"

	if isStdout {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case "json":
		return NewJSONReporter(writer, logger), nil
	case "csv":
		return NewCSVReporter(writer, logger), nil
	default:
		if !isStdout {
			writer.Close()
		}
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
