package series

import (
	"bytes"
	"cmp"
	"encoding/json"
)

// AreaStyle fills the area below a line series.
type AreaStyle struct {
	Opacity float64 `json:"opacity"`
}

// Series is one chart line, in the shape the dashboard's chart library reads.
type Series struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Data       []float64  `json:"data"`
	Smooth     bool       `json:"smooth"`
	Symbol     string     `json:"symbol"`
	SymbolSize int        `json:"symbolSize"`
	AreaStyle  *AreaStyle `json:"areaStyle,omitempty"`
}

// Style controls the presentation fields of assembled series.
type Style struct {
	// KeyField names the axis column of table rows: "date" or "year"
	KeyField string
	// Filled adds a translucent area under each line
	Filled bool
}

// TableRow is one axis position of the table view. It marshals as an object
// holding the axis key followed by one field per selected city.
type TableRow[K cmp.Ordered] struct {
	KeyField string
	Key      K
	Cities   []string
	Values   []float64
}

func (r TableRow[K]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if err := writeField(&buf, r.KeyField, r.Key); err != nil {
		return nil, err
	}
	for i, city := range r.Cities {
		buf.WriteByte(',')
		if err := writeField(&buf, city, r.Values[i]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, name string, v any) error {
	k, err := json.Marshal(name)
	if err != nil {
		return err
	}
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

// Chart holds the two parallel views of an aligned matrix.
type Chart[K cmp.Ordered] struct {
	Series []Series
	Table  []TableRow[K]
}

// Assemble turns an aligned matrix into chart series (ordered as the
// selection) and row-major table rows (ordered as the axis).
func Assemble[K cmp.Ordered](a Aligned[K], style Style) Chart[K] {
	chart := Chart[K]{
		Series: make([]Series, 0, len(a.Cities)),
		Table:  make([]TableRow[K], 0, len(a.Axis)),
	}

	for _, city := range a.Cities {
		data := make([]float64, len(a.Axis))
		for i, key := range a.Axis {
			data[i] = a.Value(city, key)
		}

		s := Series{
			Name:       city,
			Type:       "line",
			Data:       data,
			Smooth:     true,
			Symbol:     "circle",
			SymbolSize: 6,
		}
		if style.Filled {
			s.AreaStyle = &AreaStyle{Opacity: 0.3}
		}
		chart.Series = append(chart.Series, s)
	}

	for _, key := range a.Axis {
		values := make([]float64, len(a.Cities))
		for i, city := range a.Cities {
			values[i] = a.Value(city, key)
		}
		chart.Table = append(chart.Table, TableRow[K]{
			KeyField: style.KeyField,
			Key:      key,
			Cities:   a.Cities,
			Values:   values,
		})
	}

	return chart
}
