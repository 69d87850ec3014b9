package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

const sampleCSV = "city,psc,street,cp,co\n" +
	"Praha,110 00,Václavské náměstí,1,846\n" +
	"Praha,120 00,Korunní,10,\n" +
	"Brno,602 00,Česká,5,\n"

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "addresses.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	l := NewLoader(zap.NewNop())

	records, err := l.LoadFile(writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].City != "Praha" || records[0].Street != "Václavské náměstí" {
		t.Errorf("first record = %+v", records[0])
	}
	if records[0].OrientationNumber != "846" || records[1].OrientationNumber != "" {
		t.Errorf("orientation numbers = %q, %q", records[0].OrientationNumber, records[1].OrientationNumber)
	}
}

func TestLoadFileStripsBOM(t *testing.T) {
	l := NewLoader(zap.NewNop())

	records, err := l.LoadFile(writeTemp(t, "\xef\xbb\xbf"+sampleCSV))
	if err != nil {
		t.Fatalf("LoadFile with BOM: %v", err)
	}
	if records[0].City != "Praha" {
		t.Errorf("BOM leaked into first header/field: %+v", records[0])
	}
}

func TestLoadFileReorderedColumns(t *testing.T) {
	l := NewLoader(zap.NewNop())

	csv := "street,co,city,cp,psc\nKorunní,2,Praha,10,120 00\n"
	records, err := l.LoadFile(writeTemp(t, csv))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	r := records[0]
	if r.City != "Praha" || r.PostalCode != "120 00" || r.Street != "Korunní" || r.HouseNumber != "10" || r.OrientationNumber != "2" {
		t.Errorf("record = %+v", r)
	}
}

func TestLoadFileSkipsIncompleteRows(t *testing.T) {
	l := NewLoader(zap.NewNop())

	csv := sampleCSV + ",110 00,Bez města,7,\n"
	records, err := l.LoadFile(writeTemp(t, csv))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("incomplete row not skipped, got %d records", len(records))
	}
}

func TestLoadFileMissingColumn(t *testing.T) {
	l := NewLoader(zap.NewNop())

	if _, err := l.LoadFile(writeTemp(t, "city,street,cp\nPraha,Korunní,10\n")); err == nil {
		t.Error("expected error for missing psc column")
	}
}

func TestLoadFileEmptyDataset(t *testing.T) {
	l := NewLoader(zap.NewNop())

	if _, err := l.LoadFile(writeTemp(t, "city,psc,street,cp,co\n")); err == nil {
		t.Error("expected error for dataset with no rows")
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	l := NewLoader(zap.NewNop())
	records, err := l.LoadURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("LoadURL: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestLoadURLBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := NewLoader(zap.NewNop())
	if _, err := l.LoadURL(context.Background(), srv.URL); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestLoadDispatch(t *testing.T) {
	l := NewLoader(zap.NewNop())

	records, err := l.Load(context.Background(), writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatalf("Load(path): %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}
