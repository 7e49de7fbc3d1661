package loader

import (
	"context"
	"errors"
	"os"

	"github.com/rocketlaunchr/dataframe-go/imports"

	"github.com/tidelang/tide/pkg/pipeline"
)

// Error definitions
var (
	ErrEmptyFile = errors.New("empty CSV file")
)

// LoadCSV reads a CSV file into table data.
// - First row is header (column names)
// - Auto-detects column types (int64, float64, bool, string)
// - Empty values become nil
func LoadCSV(ctx context.Context, path string) (pipeline.Data, error) {
	file, err := os.Open(path)
	if err != nil {
		return pipeline.Empty(), err
	}
	defer file.Close()

	df, err := imports.LoadFromCSV(ctx, file, imports.CSVLoadOptions{
		InferDataTypes: true,
	})
	if err != nil {
		return pipeline.Empty(), err
	}
	if df == nil || len(df.Series) == 0 {
		return pipeline.Empty(), ErrEmptyFile
	}

	return pipeline.FromValue(df).WithMetadata(&pipeline.Metadata{
		ContentType: "text/csv",
		Source:      path,
	}), nil
}
