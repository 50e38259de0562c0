// Package tabular implements the tabular I/O collaborator from spec.md §6:
// it reads a binary feature matrix and a continuous score vector from CSV
// or xlsx files. Dispatch on file extension and the header/rows shape are
// grounded on the teacher's adapters/excel.DataReader (ReadData,
// readExcelData, readCSVData, processRows), trimmed to CaDrA's two fixed
// tabular shapes instead of the teacher's generic schema-inference reader.
package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/matrix"
	"github.com/bioc/CaDrA/ports"
)

// Loader implements ports.TabularLoaderPort over CSV and xlsx files.
//
// A matrix file's first column header is ignored, its remaining header
// cells are sample (column) labels, and each subsequent row is a feature
// label followed by 0/1 cells. A score file has exactly two columns: a
// sample label and its continuous score, one sample per row, header
// optional (skipped when the second column of row 1 does not parse as a
// float).
type Loader struct{}

// New returns a stateless CSV/xlsx tabular loader.
func New() *Loader { return &Loader{} }

var _ ports.TabularLoaderPort = (*Loader)(nil)

// LoadMatrix implements ports.TabularLoaderPort.
func (l *Loader) LoadMatrix(_ context.Context, path string) (*matrix.BinaryMatrix, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, core.NewValidationError("matrix_file", "must have a header row and at least one feature row")
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, core.NewValidationError("matrix_file", "header must list at least one sample column")
	}
	colLabels := trimAll(header[1:])

	rowLabels := make([]string, 0, len(rows)-1)
	data := make([][]uint8, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}
		label := strings.TrimSpace(row[0])
		cells := row[1:]
		if len(cells) != len(colLabels) {
			return nil, core.NewValidationError("matrix_file", fmt.Sprintf("row %q has %d cells, expected %d", label, len(cells), len(colLabels)))
		}
		bits := make([]uint8, len(cells))
		for j, cell := range cells {
			v, err := strconv.ParseUint(strings.TrimSpace(cell), 10, 8)
			if err != nil || v > 1 {
				return nil, core.NewValidationError("matrix_file", fmt.Sprintf("row %q col %q: cell must be 0 or 1", label, colLabels[j]))
			}
			bits[j] = uint8(v)
		}
		rowLabels = append(rowLabels, label)
		data = append(data, bits)
	}

	return matrix.New(data, rowLabels, colLabels)
}

// LoadScoreVector implements ports.TabularLoaderPort.
func (l *Loader) LoadScoreVector(_ context.Context, path string) ([]float64, []string, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, core.NewValidationError("score_file", "must not be empty")
	}

	start := 0
	if len(rows[0]) >= 2 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			start = 1 // header row, skip
		}
	}

	labels := make([]string, 0, len(rows)-start)
	scores := make([]float64, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 {
			continue
		}
		label := strings.TrimSpace(row[0])
		v, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, nil, core.NewValidationError("score_file", fmt.Sprintf("sample %q: score must be numeric", label))
		}
		labels = append(labels, label)
		scores = append(scores, v)
	}
	return scores, labels, nil
}

func readRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, core.NewValidationError("path", fmt.Sprintf("file not found: %s", path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" {
		return readCSVRows(path)
	}
	return readExcelRows(path)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		sheet = "Sheet1"
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	return rows, nil
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
