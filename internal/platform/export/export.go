// Package export renders referral system snapshots as CSV and archives them
// to local disk or an S3-compatible bucket.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Table is a rendered snapshot ready for CSV output.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV renders the table to w.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Archive stores a rendered export and returns its location (a file path or
// an s3:// URL depending on the backend).
type Archive interface {
	Store(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Exporter renders tables and hands them to an archive.
type Exporter struct {
	archive Archive
	now     func() time.Time
}

// NewExporter creates an Exporter backed by the given archive.
func NewExporter(archive Archive) *Exporter {
	return &Exporter{archive: archive, now: time.Now}
}

// Export renders the table as CSV and stores it under a timestamped key.
func (e *Exporter) Export(ctx context.Context, name string, t Table) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return "", fmt.Errorf("render csv: %w", err)
	}
	key := fmt.Sprintf("%s-%s.csv", name, e.now().UTC().Format("20060102T150405"))
	return e.archive.Store(ctx, key, "text/csv", &buf)
}
