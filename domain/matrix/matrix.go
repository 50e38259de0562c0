// Package matrix owns the binary feature matrix view (component A):
// bit-packed rows over a fixed set of columns, with stable row/column
// labels. Rows are stored as Roaring bitmaps so OR-union and popcount stay
// cheap even as the candidate set grows across a search.
package matrix

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/bioc/CaDrA/domain/core"
)

// BitRow is a column-indexed bitset: bit j is set iff the row has a 1 in
// column j. The zero value is a valid empty row.
type BitRow struct {
	bm *roaring.Bitmap
}

// NewBitRow builds a BitRow from a dense 0/1 slice.
func NewBitRow(bits []uint8) BitRow {
	bm := roaring.New()
	for j, b := range bits {
		if b != 0 {
			bm.Add(uint32(j))
		}
	}
	return BitRow{bm: bm}
}

func emptyBitRow() BitRow { return BitRow{bm: roaring.New()} }

// Get reports whether column j is set.
func (r BitRow) Get(j int) bool {
	if r.bm == nil {
		return false
	}
	return r.bm.Contains(uint32(j))
}

// PopCount returns the number of set columns.
func (r BitRow) PopCount() int {
	if r.bm == nil {
		return 0
	}
	return int(r.bm.GetCardinality())
}

// Or returns a new row equal to the elementwise OR of r and other.
func (r BitRow) Or(other BitRow) BitRow {
	out := r.clone()
	if other.bm != nil {
		out.bm.Or(other.bm)
	}
	return out
}

func (r BitRow) clone() BitRow {
	if r.bm == nil {
		return emptyBitRow()
	}
	return BitRow{bm: r.bm.Clone()}
}

// ToUint8 materializes the row as a dense 0/1 slice of length n.
func (r BitRow) ToUint8(n int) []uint8 {
	out := make([]uint8, n)
	if r.bm == nil {
		return out
	}
	it := r.bm.Iterator()
	for it.HasNext() {
		j := it.Next()
		if int(j) < n {
			out[j] = 1
		}
	}
	return out
}

// orAll computes the union of a set of rows without mutating any of them.
func orAll(rows ...BitRow) BitRow {
	bitmaps := make([]*roaring.Bitmap, 0, len(rows))
	for _, row := range rows {
		if row.bm != nil {
			bitmaps = append(bitmaps, row.bm)
		}
	}
	if len(bitmaps) == 0 {
		return emptyBitRow()
	}
	return BitRow{bm: roaring.FastOr(bitmaps...)}
}

// BinaryMatrix is an M (features) x N (samples) 0/1 matrix with unique,
// stable row and column labels. Row indices never change once loaded:
// reordering only affects the column view (ReorderCols), matching the
// spec's requirement that "row indices stay stable throughout a search".
type BinaryMatrix struct {
	rows     []BitRow
	rowLabel []string
	colLabel []string
	rowIndex map[string]int
	colIndex map[string]int
	ncols    int
}

// New validates and constructs a BinaryMatrix from dense rows and labels.
// It enforces the invariants of spec.md §3: every cell in {0,1}, no row is
// all-zero or all-one, and labels are unique and non-empty.
func New(data [][]uint8, rowLabels, colLabels []string) (*BinaryMatrix, error) {
	if len(data) == 0 || len(colLabels) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	if len(rowLabels) != len(data) {
		return nil, core.NewValidationError("row_labels", "count must match row count")
	}
	ncols := len(colLabels)

	rowIndex := make(map[string]int, len(rowLabels))
	colIndex := make(map[string]int, len(colLabels))
	for j, l := range colLabels {
		if l == "" {
			return nil, core.ErrMissingLabel
		}
		if _, dup := colIndex[l]; dup {
			return nil, core.ErrDuplicateLabel
		}
		colIndex[l] = j
	}

	rows := make([]BitRow, len(data))
	for i, rawRow := range data {
		if len(rawRow) != ncols {
			return nil, core.NewValidationError("matrix_data", fmt.Sprintf("row %d has %d columns, expected %d", i, len(rawRow), ncols))
		}
		label := rowLabels[i]
		if label == "" {
			return nil, core.ErrMissingLabel
		}
		if _, dup := rowIndex[label]; dup {
			return nil, core.ErrDuplicateLabel
		}
		ones := 0
		for _, v := range rawRow {
			if v != 0 && v != 1 {
				return nil, core.ErrNotBinary
			}
			if v == 1 {
				ones++
			}
		}
		if ones == 0 || ones == ncols {
			return nil, fmt.Errorf("%w: row %q", core.ErrDegenerateRow, label)
		}
		rowIndex[label] = i
		rows[i] = NewBitRow(rawRow)
	}

	return &BinaryMatrix{
		rows:     rows,
		rowLabel: append([]string(nil), rowLabels...),
		colLabel: append([]string(nil), colLabels...),
		rowIndex: rowIndex,
		colIndex: colIndex,
		ncols:    ncols,
	}, nil
}

// RowCount returns M, the number of features.
func (m *BinaryMatrix) RowCount() int { return len(m.rows) }

// ColCount returns N, the number of samples.
func (m *BinaryMatrix) ColCount() int { return m.ncols }

// RowLabels returns the row (feature) labels in index order.
func (m *BinaryMatrix) RowLabels() []string { return append([]string(nil), m.rowLabel...) }

// ColLabels returns the column (sample) labels in index order.
func (m *BinaryMatrix) ColLabels() []string { return append([]string(nil), m.colLabel...) }

// RowLabel returns the label for row index i.
func (m *BinaryMatrix) RowLabel(i int) string { return m.rowLabel[i] }

// RowIndex resolves a feature label to its row index.
func (m *BinaryMatrix) RowIndex(label string) (int, bool) {
	i, ok := m.rowIndex[label]
	return i, ok
}

// ColIndex resolves a sample label to its column index.
func (m *BinaryMatrix) ColIndex(label string) (int, bool) {
	j, ok := m.colIndex[label]
	return j, ok
}

// Row returns a constant-time reference to row i.
func (m *BinaryMatrix) Row(i int) BitRow { return m.rows[i] }

// RowCountOnes returns the popcount of row i.
func (m *BinaryMatrix) RowCountOnes(i int) int { return m.rows[i].PopCount() }

// OrUnion computes the elementwise OR across a set of row indices.
func (m *BinaryMatrix) OrUnion(rowIdx []int) BitRow {
	rows := make([]BitRow, len(rowIdx))
	for k, i := range rowIdx {
		rows[k] = m.rows[i]
	}
	return orAll(rows...)
}

// ReorderCols returns a new view with columns permuted according to perm
// (perm[j] is the source column for destination column j). Row and column
// labels stay attached to their (possibly moved) data, and row indices are
// untouched, per spec.md §4.1.
func (m *BinaryMatrix) ReorderCols(perm []int) (*BinaryMatrix, error) {
	if len(perm) != m.ncols {
		return nil, core.NewValidationError("perm", "must be a permutation of all columns")
	}
	seen := make([]bool, m.ncols)
	newColLabel := make([]string, m.ncols)
	for j, src := range perm {
		if src < 0 || src >= m.ncols || seen[src] {
			return nil, core.NewValidationError("perm", "must be a permutation of all columns")
		}
		seen[src] = true
		newColLabel[j] = m.colLabel[src]
	}

	newRows := make([]BitRow, len(m.rows))
	for i, row := range m.rows {
		bits := row.ToUint8(m.ncols)
		newBits := make([]uint8, m.ncols)
		for j, src := range perm {
			newBits[j] = bits[src]
		}
		newRows[i] = NewBitRow(newBits)
	}

	newColIndex := make(map[string]int, m.ncols)
	for j, l := range newColLabel {
		newColIndex[l] = j
	}

	return &BinaryMatrix{
		rows:     newRows,
		rowLabel: append([]string(nil), m.rowLabel...),
		colLabel: newColLabel,
		rowIndex: m.rowIndex,
		colIndex: newColIndex,
		ncols:    m.ncols,
	}, nil
}

// Select returns a new BinaryMatrix restricted to the given row indices,
// preserving their relative order. Used by the prefilter adapter.
func (m *BinaryMatrix) Select(rowIdx []int) (*BinaryMatrix, error) {
	data := make([][]uint8, len(rowIdx))
	labels := make([]string, len(rowIdx))
	for k, i := range rowIdx {
		data[k] = m.rows[i].ToUint8(m.ncols)
		labels[k] = m.rowLabel[i]
	}
	return New(data, labels, m.colLabel)
}
