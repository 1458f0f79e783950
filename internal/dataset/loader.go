// Package dataset loads the curated disease population and the per-(disease,
// criterion) raw values the engine consumes. All raw values reach the engine
// fully resolved; this package is the boundary where upstream concerns such
// as mocked criteria are settled.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/priorank/priorank-cli/api/schemas"
	"github.com/priorank/priorank-cli/internal/criteria"
)

// LoadDiseases reads the curated disease list: a JSON array of objects with
// "code" and "name" fields. Codes must be unique and non-empty.
func LoadDiseases(path string) ([]schemas.Disease, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read disease list %s: %w", path, err)
	}

	var diseases []schemas.Disease
	if err := json.Unmarshal(data, &diseases); err != nil {
		return nil, fmt.Errorf("failed to parse disease list %s: %w", path, err)
	}

	seen := make(map[string]bool, len(diseases))
	for i, d := range diseases {
		if d.Code == "" {
			return nil, fmt.Errorf("disease list %s: entry %d has an empty code", path, i)
		}
		if seen[d.Code] {
			return nil, fmt.Errorf("disease list %s: duplicate disease code %q", path, d.Code)
		}
		seen[d.Code] = true
	}
	return diseases, nil
}

// LoadRawValues reads the raw-value document: a JSON object mapping disease
// code to a per-criterion value object. Missing keys and explicit nulls both
// decode to the absent sentinel.
func LoadRawValues(path string) (schemas.RawValueTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw values %s: %w", path, err)
	}

	var table schemas.RawValueTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse raw values %s: %w", path, err)
	}
	return table, nil
}

// ApplyMocks substitutes the configured mock_value as every disease's raw
// value for each mocked criterion. The engine itself never interprets the
// mock flags; by the time it runs, a mocked value is indistinguishable from a
// real one.
func ApplyMocks(table schemas.RawValueTable, diseases []schemas.Disease, spec *criteria.Spec) schemas.RawValueTable {
	if table == nil {
		table = make(schemas.RawValueTable, len(diseases))
	}
	for _, cfg := range spec.Criteria {
		if !cfg.Mock {
			continue
		}
		for _, d := range diseases {
			if table[d.Code] == nil {
				table[d.Code] = make(map[string]schemas.RawValue, len(spec.Criteria))
			}
			table[d.Code][cfg.Name] = cfg.MockValue
		}
	}
	return table
}
