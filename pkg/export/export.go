package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Dataset is a rendered table: ordered column headers plus rows of
// cells aligned positionally with them.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

func (d Dataset) check() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset has no columns")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(d.Headers))
		}
	}
	return nil
}

// CSV encodes the dataset with a header line.
func CSV(d Dataset) ([]byte, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(append([][]string{d.Headers}, d.Rows...)); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF lays the dataset out as an A4 portrait table under an optional
// title and subtitle line.
func PDF(d Dataset, title, subtitle string) ([]byte, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(10, 15, 10)
	doc.AddPage()

	if title != "" {
		doc.SetFont("Arial", "B", 14)
		doc.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	}
	if subtitle != "" {
		doc.SetFont("Arial", "", 10)
		doc.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
	}
	doc.Ln(5)

	width := 190.0 / float64(len(d.Headers))
	doc.SetFont("Arial", "B", 10)
	for _, h := range d.Headers {
		doc.CellFormat(width, 8, h, "1", 0, "C", false, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 9)
	for _, row := range d.Rows {
		for _, cell := range row {
			doc.CellFormat(width, 7, cell, "1", 0, "", false, 0, "")
		}
		doc.Ln(-1)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
