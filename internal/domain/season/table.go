package season

import (
	"math"
	"sort"
	"strconv"
)

// Row maps a column name to a scalar value (string, bool, int64, float64,
// []int64 or nil).
type Row map[string]any

// Table is a small column-ordered frame used to normalize platform payloads.
type Table struct {
	Columns []string
	Rows    []Row
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds one row whose values follow the column order.
func (t *Table) Append(values ...any) {
	row := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		if i < len(values) {
			row[col] = values[i]
		} else {
			row[col] = nil
		}
	}
	t.Rows = append(t.Rows, row)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) Has(column string) bool {
	if t == nil {
		return false
	}
	for _, col := range t.Columns {
		if col == column {
			return true
		}
	}
	return false
}

func (t *Table) Column(name string) []any {
	out := make([]any, 0, t.Len())
	if t == nil {
		return out
	}
	for _, row := range t.Rows {
		out = append(out, row[name])
	}
	return out
}

// Select projects the given columns; unknown columns come back as nulls.
func (t *Table) Select(columns ...string) *Table {
	out := NewTable(columns...)
	if t == nil {
		return out
	}
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		projected := make(Row, len(columns))
		for _, col := range columns {
			projected[col] = row[col]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// Drop returns a copy without the given columns.
func (t *Table) Drop(columns ...string) *Table {
	dropped := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		dropped[col] = struct{}{}
	}
	keep := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		if _, ok := dropped[col]; !ok {
			keep = append(keep, col)
		}
	}
	return t.Select(keep...)
}

func (t *Table) Filter(keep func(Row) bool) *Table {
	out := NewTable(t.Columns...)
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// DedupBy keeps the first row for every distinct value of column.
func (t *Table) DedupBy(column string) *Table {
	seen := make(map[string]struct{}, len(t.Rows))
	return t.Filter(func(row Row) bool {
		key, ok := JoinKey(row[column])
		if !ok {
			return true
		}
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// LeftJoin attaches the first matching right row to every left row on the
// given key. Left rows without a match keep null right-hand columns.
// Right columns whose names collide with left columns are skipped.
func (t *Table) LeftJoin(right *Table, on string) *Table {
	columns := append([]string(nil), t.Columns...)
	extra := make([]string, 0)
	if right != nil {
		for _, col := range right.Columns {
			if col == on || t.Has(col) {
				continue
			}
			extra = append(extra, col)
		}
	}
	columns = append(columns, extra...)

	index := make(map[string]Row)
	if right != nil {
		for _, row := range right.Rows {
			key, ok := JoinKey(row[on])
			if !ok {
				continue
			}
			if _, exists := index[key]; !exists {
				index[key] = row
			}
		}
	}

	out := NewTable(columns...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		merged := make(Row, len(columns))
		for _, col := range t.Columns {
			merged[col] = row[col]
		}
		var match Row
		if key, ok := JoinKey(row[on]); ok {
			match = index[key]
		}
		for _, col := range extra {
			if match != nil {
				merged[col] = match[col]
			} else {
				merged[col] = nil
			}
		}
		out.Rows = append(out.Rows, merged)
	}
	return out
}

// RankMinDescending writes the descending "min" rank of source into target.
// Tied values share the lowest rank; rows without a numeric source get null.
func (t *Table) RankMinDescending(source, target string) {
	if !t.Has(target) {
		t.Columns = append(t.Columns, target)
	}

	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := Number(row[source]); ok {
			values = append(values, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	for _, row := range t.Rows {
		v, ok := Number(row[source])
		if !ok {
			row[target] = nil
			continue
		}
		// first index whose value is not greater than v
		idx := sort.Search(len(values), func(i int) bool { return values[i] <= v })
		row[target] = int64(idx + 1)
	}
}

// JoinKey normalizes an identifier so that 7, int64(7) and 7.0 match.
func JoinKey(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case int:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Number reads a numeric cell.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case float32:
		return float64(x), true
	default:
		return 0, false
	}
}
