// Package dataset loads the reference address dataset from CSV, either from
// the local filesystem or over HTTP. Rows are decoded into AddressRecord
// values; all normalization happens later, at index build time.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/address-validator/app/models"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column headers expected in the source CSV. The co column is optional.
const (
	colCity        = "city"
	colPostalCode  = "psc"
	colStreet      = "street"
	colHouseNumber = "cp"
	colOrientation = "co"
)

// Loader reads address CSV files. Exports from spreadsheet tooling often
// carry a UTF-8 BOM, which the loader strips transparently.
type Loader struct {
	client *http.Client
	logger *zap.Logger
}

// NewLoader creates a loader with a sane HTTP timeout for remote sources.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// LoadFile reads and parses a CSV file on the local filesystem.
func (l *Loader) LoadFile(path string) ([]models.AddressRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file %s: %w", path, err)
	}
	defer f.Close()

	records, err := l.parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse dataset file %s: %w", path, err)
	}
	l.logger.Info("dataset loaded from file", zap.String("path", path), zap.Int("records", len(records)))
	return records, nil
}

// LoadURL fetches and parses a CSV file over HTTP.
func (l *Loader) LoadURL(ctx context.Context, url string) ([]models.AddressRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset %s: unexpected status %d", url, resp.StatusCode)
	}

	records, err := l.parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", url, err)
	}
	l.logger.Info("dataset loaded from url", zap.String("url", url), zap.Int("records", len(records)))
	return records, nil
}

// Load dispatches on the source string: http(s) URLs go over the network,
// anything else is treated as a local path.
func (l *Loader) Load(ctx context.Context, source string) ([]models.AddressRecord, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.LoadURL(ctx, source)
	}
	return l.LoadFile(source)
}

// parse decodes the CSV stream. The header row is required and column order
// is free; rows missing any required field are skipped, not fatal.
func (l *Loader) parse(r io.Reader) ([]models.AddressRecord, error) {
	// Strip a leading UTF-8 BOM if present; pass plain UTF-8 through.
	decoded := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())

	cr := csv.NewReader(decoded)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colCity, colPostalCode, colStreet, colHouseNumber} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var records []models.AddressRecord
	skipped := 0
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		rec := models.AddressRecord{
			City:              field(row, cols, colCity),
			PostalCode:        field(row, cols, colPostalCode),
			Street:            field(row, cols, colStreet),
			HouseNumber:       field(row, cols, colHouseNumber),
			OrientationNumber: field(row, cols, colOrientation),
		}
		if rec.City == "" || rec.PostalCode == "" || rec.Street == "" || rec.HouseNumber == "" {
			skipped++
			l.logger.Debug("skipping incomplete dataset row", zap.Int("line", line))
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		l.logger.Warn("dataset rows skipped", zap.Int("skipped", skipped))
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset contains no usable rows")
	}
	return records, nil
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
