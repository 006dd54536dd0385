package printers

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/pricematrix/pkg/matrix"
	"tableflip.dev/pricematrix/pkg/tier"
)

type PrettyPrint struct {
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

// Matrix renders m as a row by tier table. Drafts are shown faint.
func (pp *PrettyPrint) Matrix(m matrix.Matrix) {
	if m.Len() == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	columns := m.Columns()
	tbl := uitable.New()
	tbl.Separator = "  "

	header := []interface{}{bold.Sprint("")}
	for _, t := range columns {
		header = append(header, bold.Sprint(t.String()))
	}
	tbl.AddRow(header...)

	for _, row := range m.Rows() {
		cells := []interface{}{bold.Sprint(row)}
		for _, t := range columns {
			v, ok := m.Get(row, t)
			switch {
			case !ok:
				cells = append(cells, faint.Sprint("-"))
			case v.IsDraft():
				cells = append(cells, faint.Sprint(v.Text()))
			default:
				cells = append(cells, FormatPrice(v.Float()))
			}
		}
		tbl.AddRow(cells...)
	}
	for i := range columns {
		tbl.RightAlign(i + 1)
	}

	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out(), "")
}

// Cell prints one cell as "row/tier = value".
func (pp *PrettyPrint) Cell(row string, t tier.Tier, v matrix.Value) {
	y := color.New(color.FgHiYellow)
	_, _ = fmt.Fprintf(pp.out(), "%s/%s = %s\n", row, t, y.Sprint(FormatPrice(v.Float())))
}

// FormatPrice prints whole numbers without a fraction and everything else
// with the shortest exact representation.
func FormatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
