package loader

import (
	"bytes"
	"context"
	"errors"
	"os"

	"github.com/rocketlaunchr/dataframe-go/imports"

	"github.com/tidelang/tide/pkg/pipeline"
)

// JSON-specific errors
var (
	ErrEmptyJSON = errors.New("empty JSON file")
)

// LoadJSON reads a JSON file containing an array of objects into table data.
// The JSON must be in the format: [{"col1": val1, "col2": val2}, ...]
// Column types are inferred automatically.
func LoadJSON(ctx context.Context, path string) (pipeline.Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Empty(), err
	}
	if len(data) == 0 {
		return pipeline.Empty(), ErrEmptyJSON
	}

	df, err := imports.LoadFromJSON(ctx, bytes.NewReader(data))
	if err != nil {
		return pipeline.Empty(), err
	}
	if df == nil || len(df.Series) == 0 {
		return pipeline.Empty(), ErrEmptyJSON
	}

	return pipeline.FromValue(df).WithMetadata(&pipeline.Metadata{
		ContentType: "application/json",
		Source:      path,
	}), nil
}
