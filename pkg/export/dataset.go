// Package export renders tabular datasets into downloadable artifacts.
package export

// Dataset is an ordered table: Headers fixes the column order, each row maps
// header name to cell value. Missing cells render empty.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// AddRow appends one row.
func (d *Dataset) AddRow(row map[string]string) {
	d.Rows = append(d.Rows, row)
}
