// Package testutil provides testing utilities for tide tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/span"
)

// TempCSV creates a temporary CSV file and returns its path.
// The file is automatically cleaned up when the test finishes.
func TempCSV(t *testing.T, content string) string {
	t.Helper()
	return TempFile(t, content, ".csv")
}

// TempFile creates a temporary file with the given content and extension.
func TempFile(t *testing.T, content, ext string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+ext)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// SalesCSV returns standard test CSV content for sales data.
func SalesCSV() string {
	return `price,quantity,category
10.5,5,A
20.0,15,B
5.0,3,A
30.0,20,C
15.0,8,B`
}

// MakeSalesFrame creates a standard sales test frame.
func MakeSalesFrame() *dataframe.DataFrame {
	return dataframe.NewDataFrame(
		dataframe.NewSeriesFloat64("price", nil, 10.5, 20.0, 5.0, 30.0, 15.0),
		dataframe.NewSeriesInt64("quantity", nil, 5, 15, 3, 20, 8),
		dataframe.NewSeriesString("category", nil, "A", "B", "A", "C", "B"),
	)
}

// EchoBlock builds the smallest runnable block: return the pipeline input.
func EchoBlock(t *testing.T) *ir.Block {
	t.Helper()
	bb := ir.NewBlockBuilder(1)
	bb.Emit(ir.Encode(ir.OpReturn, 0, 0, 0), span.Unknown())
	block, err := bb.Build()
	if err != nil {
		t.Fatalf("building echo block: %v", err)
	}
	return block
}
