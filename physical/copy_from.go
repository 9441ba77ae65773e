package physical

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/nectardb/nectar/catalog"
	"github.com/nectardb/nectar/common"
	"github.com/nectardb/nectar/types"
)

// CopyFrom reads rows from a CSV file (optionally zstd-compressed,
// detected by a .zst suffix), parses each row against the table's
// property types and checks its primary key through the primary-key
// index, failing with a RuntimeError on a key repeated within the file
// (spec.md §4.5 "CopyFrom"). It returns the number of rows read as
// rows_loaded; it does not write the parsed rows into table storage.
// PreservingOrder is Open Question #3's resolution: the file is always
// read by a single reader in file order, so the field is carried but not
// consulted here.
type CopyFrom struct {
	base
	Storage         catalog.Storage
	Table           *catalog.TableSchema
	Path            string
	PreservingOrder bool
	Open_           func(path string) (io.ReadCloser, error)

	done      bool
	rowsCount int64
}

func NewCopyFrom(storage catalog.Storage, table *catalog.TableSchema, path string, preservingOrder bool) *CopyFrom {
	return &CopyFrom{base: base{names: []string{"rows_loaded"}}, Storage: storage, Table: table, Path: path, PreservingOrder: preservingOrder, Open_: openFile}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return zstdReadCloser{zr, f}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

func (z zstdReadCloser) Read(p []byte) (int, error) { return z.Decoder.Read(p) }
func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

func (c *CopyFrom) Open(ec *common.ExecutionContext) error { c.done = false; c.rowsCount = 0; return nil }
func (c *CopyFrom) Close() error                             { return nil }

func (c *CopyFrom) Next(ec *common.ExecutionContext) (*Batch, error) {
	if c.done {
		return nil, nil
	}
	c.done = true

	rc, err := c.Open_(c.Path)
	if err != nil {
		return nil, fmt.Errorf("copy from %s: %w", c.Path, err)
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	header, err := r.Read()
	if err != nil && err != io.EOF {
		return nil, err
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}

	var idx catalog.PrimaryKeyIndex
	if c.Storage != nil {
		idx, _ = c.Storage.PrimaryKeyIndexFor(c.Table.ID)
	}

	var loaded int64
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		vals := make([]types.Value, len(c.Table.Properties))
		for i, prop := range c.Table.Properties {
			ci, ok := colIdx[prop.Name]
			if !ok || ci >= len(rec) {
				vals[i] = types.NullValue(prop.Type)
				continue
			}
			v, err := parseCSVValue(rec[ci], prop.Type)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		if idx != nil && c.Table.PrimaryKey != "" {
			for i, prop := range c.Table.Properties {
				if prop.Name != c.Table.PrimaryKey {
					continue
				}
				if _, dup := idx.Lookup(vals[i]); dup {
					return nil, common.NewRuntimeError(fmt.Sprintf("primary-key conflict during copy: duplicate key %s", vals[i].String()), nil)
				}
				if err := idx.Append(vals[i], uint64(loaded)); err != nil {
					return nil, common.NewRuntimeError("primary-key index append failed during copy", err)
				}
			}
		}
		loaded++
	}

	c.rowsCount = loaded
	out := NewBatch(c.ColumnNames(), []types.LogicalType{types.NewInt64()}, 1)
	out.Columns[0].Append(types.Int64Value(loaded))
	return out, nil
}

func parseCSVValue(s string, t types.LogicalType) (types.Value, error) {
	if s == "" {
		return types.NullValue(t), nil
	}
	switch t.Kind {
	case types.Int8, types.Int16, types.Int32, types.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return types.Value{}, err
		}
		return types.Int64Value(n), nil
	case types.Float, types.Double:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.Value{}, err
		}
		return types.DoubleValue(f), nil
	case types.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return types.Value{}, err
		}
		return types.BoolValue(b), nil
	default:
		return types.StringValue(s), nil
	}
}

// CopyTo exports ResultSet rows to a CSV file (spec.md §4.5 "CopyTo").
type CopyTo struct {
	base
	Child Operator
	Path  string

	done bool
}

func NewCopyTo(child Operator, path string) *CopyTo {
	return &CopyTo{base: base{names: []string{"rows_written"}}, Child: child, Path: path}
}

func (c *CopyTo) Open(ec *common.ExecutionContext) error { c.done = false; return c.Child.Open(ec) }
func (c *CopyTo) Close() error                             { return c.Child.Close() }

func (c *CopyTo) Next(ec *common.ExecutionContext) (*Batch, error) {
	if c.done {
		return nil, nil
	}
	c.done = true

	f, err := os.Create(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	var written int64
	headerWritten := false
	for {
		if err := ec.CheckInterrupted(); err != nil {
			return nil, err
		}
		b, err := c.Child.Next(ec)
		if err != nil {
			return nil, err
		}
		if b == nil {
			break
		}
		if !headerWritten {
			if err := w.Write(b.Names); err != nil {
				return nil, err
			}
			headerWritten = true
		}
		for r := 0; r < b.Size(); r++ {
			row := make([]string, len(b.Columns))
			for ci, col := range b.Columns {
				if col.IsNull(r) {
					row[ci] = ""
				} else {
					row[ci] = col.Get(r).String()
				}
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
			written++
		}
	}

	out := NewBatch(c.ColumnNames(), []types.LogicalType{types.NewInt64()}, 1)
	out.Columns[0].Append(types.Int64Value(written))
	return out, nil
}

func (c *CopyTo) Children() []Operator { return []Operator{c.Child} }
func (c *CopyFrom) Children() []Operator { return nil }
