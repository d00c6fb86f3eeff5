package moviestat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/compress"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"

	"github.com/nao1215/moviestat/domain/model"
)

// parseParquet parses a Parquet file with compression support.
func (f *file) parseParquet(ctx context.Context) (*Table, error) {
	reader, closer, err := openDecompressed(f.path)
	if err != nil {
		return nil, err
	}
	defer closer() //nolint:errcheck // read-only handle

	// Read all data into memory (Parquet requires random access)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty parquet file: %s", ErrEmptyData, f.path)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer table.Release()

	schema := table.Schema()
	names := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		names[i] = field.Name
	}
	if err := validateColumnNames(names); err != nil {
		return nil, err
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	var records []Record
	for tableReader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch := tableReader.Record()
		numRows := int(batch.NumRows())
		for i := 0; i < numRows; i++ {
			row := make(Record, batch.NumCols())
			for j, col := range batch.Columns() {
				row[j] = extractValueFromArrowArray(col, i)
			}
			records = append(records, row)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parquet records: %w", err)
	}

	return newTable(tableFromFilePath(f.path), newHeader(names), records), nil
}

// extractValueFromArrowArray renders one cell of an Arrow array as text.
// Nulls become the empty string, booleans become "1" or "0".
func extractValueFromArrowArray(col arrow.Array, row int) string {
	if col.IsNull(row) {
		return ""
	}

	switch arr := col.(type) {
	case *array.Boolean:
		if arr.Value(row) {
			return "1"
		}
		return "0"
	case *array.Int8:
		return strconv.FormatInt(int64(arr.Value(row)), 10)
	case *array.Int16:
		return strconv.FormatInt(int64(arr.Value(row)), 10)
	case *array.Int32:
		return strconv.FormatInt(int64(arr.Value(row)), 10)
	case *array.Int64:
		return strconv.FormatInt(arr.Value(row), 10)
	case *array.Uint32:
		return strconv.FormatUint(uint64(arr.Value(row)), 10)
	case *array.Uint64:
		return strconv.FormatUint(arr.Value(row), 10)
	case *array.Float32:
		return strconv.FormatFloat(float64(arr.Value(row)), 'f', -1, 32)
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(row), 'f', -1, 64)
	case *array.String:
		return arr.Value(row)
	case *array.LargeString:
		return arr.Value(row)
	case *array.Binary:
		return string(arr.Value(row))
	case *array.Date32:
		return arr.Value(row).ToTime().Format(model.DateLayout)
	default:
		return col.ValueStr(row)
	}
}

// parquetField describes how one cleaned column is stored in Parquet.
type parquetField struct {
	name    string
	numeric bool
}

// parquetSchema returns the Arrow schema for the cleaned movie table.
// Numeric columns are stored as nullable int64, everything else as UTF-8.
func parquetSchema(h header) (*arrow.Schema, []parquetField) {
	fields := make([]arrow.Field, len(h))
	kinds := make([]parquetField, len(h))
	for i, name := range h {
		c, err := model.ParseColumn(name)
		numeric := err == nil && c.Kind == model.ColumnKindNumeric
		kinds[i] = parquetField{name: name, numeric: numeric}
		if numeric {
			fields[i] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64, Nullable: true}
			continue
		}
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), kinds
}

// writeParquet writes a table as a single row group Parquet stream.
func writeParquet(w io.Writer, t *Table) error {
	schema, fields := parquetSchema(t.header)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for _, r := range t.records {
		for j, field := range fields {
			value := ""
			if j < len(r) {
				value = r[j]
			}
			if field.numeric {
				b, ok := builder.Field(j).(*array.Int64Builder)
				if !ok {
					return fmt.Errorf("unexpected builder for column %s", field.name)
				}
				if value == "" {
					b.AppendNull()
					continue
				}
				n, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return fmt.Errorf("column %s: %w", field.name, err)
				}
				b.Append(n)
				continue
			}
			b, ok := builder.Field(j).(*array.StringBuilder)
			if !ok {
				return fmt.Errorf("unexpected builder for column %s", field.name)
			}
			b.Append(value)
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	table := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer table.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	return pqarrow.WriteTable(table, w, int64(len(t.records))+1, props, pqarrow.DefaultWriterProps())
}
