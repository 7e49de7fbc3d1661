// Package loader reads tabular files into pipeline data. Tables are backed
// by dataframe-go frames; every loaded value carries content-type and source
// metadata so downstream commands can tell where their input came from.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidelang/tide/pkg/pipeline"
)

var ErrUnsupportedFormat = errors.New("loader: unsupported file format")

// Load reads path into pipeline data, picking the format from the file
// extension (.csv, .json, .parquet).
func Load(ctx context.Context, path string) (pipeline.Data, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(ctx, path)
	case ".json":
		return LoadJSON(ctx, path)
	case ".parquet":
		return LoadParquet(ctx, path)
	default:
		return pipeline.Empty(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}
