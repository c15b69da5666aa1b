// Package report writes the flat CSV summary of an enriched batch.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kalambet/newsetl/internal/format"
	"github.com/kalambet/newsetl/internal/record"
)

// Header is the first line of every report.
var Header = []string{
	"user_id", "nome", "agencia", "conta", "balanco", "limite", "qtd_news_total", "ultima_news",
}

// Row is the flattened view of one user.
type Row struct {
	UserID    int
	Name      string
	Agency    string
	Account   string
	Balance   float64
	Limit     float64
	NewsCount int
	LastNews  string
}

// RowFor projects r onto a report row.
func RowFor(r *record.Record) Row {
	row := Row{
		UserID:    r.ID,
		Name:      r.Name,
		Agency:    r.Account.Agency,
		Account:   r.Account.Number,
		Balance:   r.Account.Balance,
		Limit:     r.Account.Limit,
		NewsCount: len(r.News),
	}
	if last, ok := r.LastNews(); ok {
		row.LastNews = format.Clean(last.Description)
	}
	return row
}

func (r Row) fields() []string {
	return []string{
		strconv.Itoa(r.UserID),
		r.Name,
		r.Agency,
		r.Account,
		formatFloat(r.Balance),
		formatFloat(r.Limit),
		strconv.Itoa(r.NewsCount),
		r.LastNews,
	}
}

// formatFloat renders floats the way spreadsheet users of the previous
// report are used to: integral values keep one decimal ("20000.0").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

// Encode serializes recs as CSV encoded in UTF-8 with a byte order mark, so
// spreadsheet tools pick the right charset for accented names.
func Encode(recs []*record.Record) ([]byte, error) {
	var buf bytes.Buffer
	tw := transform.NewWriter(&buf, unicode.UTF8BOM.NewEncoder())

	w := csv.NewWriter(tw)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range recs {
		if err := w.Write(RowFor(r).fields()); err != nil {
			return nil, fmt.Errorf("writing row for user %d: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCSV writes the report for recs to path, replacing any existing file.
func WriteCSV(path string, recs []*record.Record) error {
	data, err := Encode(recs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Writer writes the batch report to a fixed path.
type Writer struct {
	Path string
}

// WriteReport implements pipeline.ReportWriter.
func (w Writer) WriteReport(recs []*record.Record) error {
	if err := WriteCSV(w.Path, recs); err != nil {
		return err
	}
	slog.Info("report written", "path", w.Path, "rows", len(recs))
	return nil
}

// ReportPath returns where WriteReport writes.
func (w Writer) ReportPath() string { return w.Path }
