package season

import (
	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

// MarshalJSON encodes the table as an array of records in column order.
func (t *Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	keys := make([][]byte, len(t.Columns))
	for i, col := range t.Columns {
		encoded, err := sonic.Marshal(col)
		if err != nil {
			return nil, err
		}
		keys[i] = encoded
	}

	_ = buf.WriteByte('[')
	for rowIdx, row := range t.Rows {
		if rowIdx > 0 {
			_ = buf.WriteByte(',')
		}
		_ = buf.WriteByte('{')
		for i, col := range t.Columns {
			if i > 0 {
				_ = buf.WriteByte(',')
			}
			_, _ = buf.Write(keys[i])
			_ = buf.WriteByte(':')
			value, err := sonic.Marshal(row[col])
			if err != nil {
				return nil, err
			}
			_, _ = buf.Write(value)
		}
		_ = buf.WriteByte('}')
	}
	_ = buf.WriteByte(']')

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// EncodeAttributes renders the record as flat string attributes, one JSON
// document per table, the shape every season store persists.
func (r Record) EncodeAttributes() (map[string]string, error) {
	out := map[string]string{
		AttrLeagueID: r.LeagueID,
		AttrPlatform: string(r.Platform),
	}
	for _, named := range r.Tables() {
		encoded, err := named.Table.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out[named.Name] = string(encoded)
	}
	if len(r.AllSeasons) > 0 {
		encoded, err := sonic.Marshal(r.AllSeasons)
		if err != nil {
			return nil, err
		}
		out[AttrAllYears] = string(encoded)
	}
	return out, nil
}
