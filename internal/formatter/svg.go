package formatter

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/tordrt/schemasketch/internal/layout"
	"github.com/tordrt/schemasketch/internal/schema"
)

const (
	svgHeaderHeight = 32
	svgLineHeight   = 18
)

// SVGFormatter draws the grid layout of a model as a standalone SVG document
type SVGFormatter struct {
	writer io.Writer
}

// NewSVGFormatter creates a new SVG formatter
func NewSVGFormatter(w io.Writer) *SVGFormatter {
	return &SVGFormatter{writer: w}
}

// Format lays out m and writes the diagram
func (f *SVGFormatter) Format(m *schema.Model) error {
	return f.FormatLayout(layout.Compute(m))
}

// FormatLayout writes an already computed layout
func (f *SVGFormatter) FormatLayout(l *schema.Layout) error {
	var sb strings.Builder

	w, h := layout.Size(l)
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", w, h, w, h)

	// Edges first so nodes are drawn over them
	for _, e := range l.Edges {
		fmt.Fprintf(&sb, `  <path d="%s" stroke="#a78bfa" stroke-width="2" fill="none"><title>%s</title></path>`+"\n",
			e.Path, html.EscapeString(e.Label))
	}

	for _, n := range l.Nodes {
		height := svgHeaderHeight + svgLineHeight*len(n.Table.Columns) + 8
		fmt.Fprintf(&sb, `  <g transform="translate(%d,%d)">`+"\n", n.X, n.Y)
		fmt.Fprintf(&sb, `    <rect width="%d" height="%d" rx="8" fill="#ffffff" stroke="#e5e7eb"/>`+"\n", layout.NodeWidth, height)
		fmt.Fprintf(&sb, `    <text x="12" y="21" font-family="sans-serif" font-size="14" font-weight="600">%s</text>`+"\n",
			html.EscapeString(n.Table.Name))

		for i, col := range n.Table.Columns {
			y := svgHeaderHeight + svgLineHeight*(i+1)
			label := col.Name + " " + col.Type
			if col.HasConstraint(schema.ConstraintPK) {
				label += " PK"
			}
			fmt.Fprintf(&sb, `    <text x="12" y="%d" font-family="monospace" font-size="12">%s</text>`+"\n",
				y, html.EscapeString(label))
		}

		sb.WriteString("  </g>\n")
	}

	sb.WriteString("</svg>\n")

	_, err := io.WriteString(f.writer, sb.String())
	return err
}
