package loader

import (
	"context"
	"errors"

	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/xitongsys/parquet-go-source/local"

	"github.com/tidelang/tide/pkg/pipeline"
)

// Parquet-specific errors
var (
	ErrEmptyParquet = errors.New("empty Parquet file")
)

// LoadParquet reads a Parquet file into table data, using the dataframe-go
// imports package with the parquet-go backend.
func LoadParquet(ctx context.Context, path string) (pipeline.Data, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return pipeline.Empty(), err
	}
	defer fr.Close()

	df, err := imports.LoadFromParquet(ctx, fr)
	if err != nil {
		return pipeline.Empty(), err
	}
	if df == nil || len(df.Series) == 0 {
		return pipeline.Empty(), ErrEmptyParquet
	}

	return pipeline.FromValue(df).WithMetadata(&pipeline.Metadata{
		ContentType: "application/vnd.apache.parquet",
		Source:      path,
	}), nil
}
