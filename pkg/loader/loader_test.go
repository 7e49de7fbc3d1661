package loader

import (
	"context"
	"errors"
	"testing"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/tidelang/tide/internal/testutil"
)

func TestLoadCSV(t *testing.T) {
	path := testutil.TempCSV(t, testutil.SalesCSV())

	data, err := LoadCSV(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	df, ok := data.Value().(*dataframe.DataFrame)
	if !ok {
		t.Fatalf("value = %T, want *dataframe.DataFrame", data.Value())
	}
	if df.NRows() != 5 || len(df.Series) != 3 {
		t.Errorf("frame shape = %dx%d, want 5x3", df.NRows(), len(df.Series))
	}

	md := data.Metadata()
	if md == nil || md.ContentType != "text/csv" || md.Source != path {
		t.Errorf("metadata = %+v, want text/csv from %s", md, path)
	}
}

func TestLoadCSVEmpty(t *testing.T) {
	path := testutil.TempCSV(t, "")
	if _, err := LoadCSV(context.Background(), path); err == nil {
		t.Error("LoadCSV on empty file succeeded")
	}
}

func TestLoadJSON(t *testing.T) {
	path := testutil.TempFile(t, `[{"name":"a","n":1},{"name":"b","n":2}]`, ".json")

	data, err := LoadJSON(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	df, ok := data.Value().(*dataframe.DataFrame)
	if !ok {
		t.Fatalf("value = %T, want *dataframe.DataFrame", data.Value())
	}
	if df.NRows() != 2 {
		t.Errorf("rows = %d, want 2", df.NRows())
	}
	if md := data.Metadata(); md == nil || md.ContentType != "application/json" {
		t.Errorf("metadata = %+v, want application/json", md)
	}
}

func TestLoadJSONEmpty(t *testing.T) {
	path := testutil.TempFile(t, "", ".json")
	if _, err := LoadJSON(context.Background(), path); !errors.Is(err, ErrEmptyJSON) {
		t.Errorf("LoadJSON = %v, want ErrEmptyJSON", err)
	}
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	path := testutil.TempCSV(t, testutil.SalesCSV())
	data, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if md := data.Metadata(); md == nil || md.ContentType != "text/csv" {
		t.Errorf("metadata = %+v, want text/csv", md)
	}

	if _, err := Load(context.Background(), "data.xml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.xml) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadCSV(context.Background(), "/nonexistent/x.csv"); err == nil {
		t.Error("LoadCSV on missing file succeeded")
	}
}
