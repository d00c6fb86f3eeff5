package moviestat

import (
	"path/filepath"
	"strings"
)

// Table is the raw, string-typed contents of a movie file. Every cleaning step
// returns a new Table; a Table is never modified after construction.
type Table struct {
	// name is table name derived from file path.
	name string
	// header is table header.
	header header
	// records is table records.
	records []Record
	// rows holds the 1-based source data row of each record.
	rows []int
}

// newTable create new table. Records are numbered 1..n in the given order.
func newTable(name string, header header, records []Record) *Table {
	rows := make([]int, len(records))
	for i := range rows {
		rows[i] = i + 1
	}
	return newTableWithRows(name, header, records, rows)
}

// newTableWithRows create new table that keeps existing source row numbers.
func newTableWithRows(name string, header header, records []Record, rows []int) *Table {
	return &Table{
		name:    name,
		header:  header,
		records: records,
		rows:    rows,
	}
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Header return a copy of the table header.
func (t *Table) Header() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Records return table records.
func (t *Table) Records() []Record {
	return t.records
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// RowNumber returns the 1-based source data row of the i-th record.
func (t *Table) RowNumber(i int) int {
	return t.rows[i]
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	return t.header.indexOf(name) >= 0
}

// Value returns the value of a column in the i-th record, or "" if the column is absent.
func (t *Table) Value(i int, column string) string {
	idx := t.header.indexOf(column)
	if idx < 0 || idx >= len(t.records[i]) {
		return ""
	}
	return t.records[i][idx]
}

// equal compare table.
func (t *Table) equal(t2 *Table) bool {
	if t.Name() != t2.Name() {
		return false
	}
	if !t.header.equal(t2.header) {
		return false
	}
	if len(t.records) != len(t2.records) {
		return false
	}
	for i, record := range t.records {
		if !record.equal(t2.records[i]) || t.rows[i] != t2.rows[i] {
			return false
		}
	}
	return true
}

// mapRecords returns a new table whose records are produced by fn. Records for
// which fn returns keep == false are dropped; source row numbers follow their record.
func (t *Table) mapRecords(fn func(i int, r Record) (out Record, keep bool, err error)) (*Table, error) {
	records := make([]Record, 0, len(t.records))
	rows := make([]int, 0, len(t.rows))
	for i, r := range t.records {
		out, keep, err := fn(i, r)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		records = append(records, out)
		rows = append(rows, t.rows[i])
	}
	return newTableWithRows(t.name, t.header, records, rows), nil
}

// tableFromFilePath creates table name from file path
func tableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	// Remove compression extensions first
	for _, ext := range []string{extGZ, extBZ2, extXZ, extZSTD} {
		if strings.HasSuffix(fileName, ext) {
			fileName = strings.TrimSuffix(fileName, ext)
			break
		}
	}
	// Then remove the file type extension
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
