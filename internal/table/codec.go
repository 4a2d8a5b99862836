package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyFile is returned when a table file has no header row.
var ErrEmptyFile = errors.New("table file has no header row")

// Codec reads and writes a table file format.
type Codec interface {
	Decode(r io.Reader) (*Table, error)
	Encode(w io.Writer, t *Table) error
}

// CodecFor picks the codec by file extension: .xlsx uses XLSX, anything else CSV.
func CodecFor(path string) Codec {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return XLSXCodec{}
	}
	return CSVCodec{}
}

// CSVCodec handles comma-separated files with a header row.
type CSVCodec struct{}

// Decode reads a CSV table. Ragged rows are padded to the header width.
func (CSVCodec) Decode(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return New(header, records[1:]), nil
}

// Encode writes the header followed by every row.
func (CSVCodec) Encode(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// XLSXCodec handles spreadsheets; only the first sheet is read and written.
type XLSXCodec struct {
	// Sheet names the written sheet; defaults to "Missions".
	Sheet string
}

// Decode reads the first sheet of a workbook.
func (XLSXCodec) Decode(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only workbook

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return New(rows[0], rows[1:]), nil
}

// Encode writes the table into a fresh single-sheet workbook.
func (c XLSXCodec) Encode(w io.Writer, t *Table) error {
	sheet := c.Sheet
	if sheet == "" {
		sheet = "Missions"
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := writeXLSXRow(f, sheet, 1, t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := writeXLSXRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeXLSXRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", rowNum, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", rowNum, err)
	}
	return nil
}

// Load reads the table at path using the codec for its extension.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	t, err := CodecFor(path).Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return t, nil
}
