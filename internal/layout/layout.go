// Package layout places the tables of a model on a fixed grid and resolves
// relations into edges between the placed nodes.
package layout

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemasketch/internal/schema"
)

// Grid geometry
const (
	Columns   = 3
	ColPitch  = 280
	RowPitch  = 240
	NodeWidth = 260
	AnchorX   = 130
	AnchorY   = 24
)

// Compute lays out m. Node i sits at column i%Columns, row i/Columns.
// Relations whose endpoints do not resolve to a node are dropped.
func Compute(m *schema.Model) *schema.Layout {
	l := &schema.Layout{
		Nodes: []schema.Node{},
		Edges: []schema.Edge{},
	}
	if m == nil {
		return l
	}

	index := make(map[string]int, len(m.Tables))
	for i, t := range m.Tables {
		x, y := Position(i)
		l.Nodes = append(l.Nodes, schema.Node{ID: t.Name, X: x, Y: y, Table: t})
		index[strings.ToLower(t.Name)] = i
	}

	for _, r := range m.Relations {
		from, ok := index[strings.ToLower(r.From)]
		if !ok {
			continue
		}
		to, ok := index[strings.ToLower(r.To)]
		if !ok {
			continue
		}

		a, b := l.Nodes[from], l.Nodes[to]
		l.Edges = append(l.Edges, schema.Edge{
			From:  from,
			To:    to,
			Label: r.Label,
			Path:  EdgePath(a.X, a.Y, b.X, b.Y),
		})
	}

	return l
}

// Position returns the top-left corner of the i-th node.
func Position(i int) (x, y int) {
	return (i % Columns) * ColPitch, (i / Columns) * RowPitch
}

// Anchor returns the connection point of a node placed at (x, y).
func Anchor(x, y int) (int, int) {
	return x + AnchorX, y + AnchorY
}

// EdgePath returns an SVG cubic curve between the anchors of two nodes.
func EdgePath(fromX, fromY, toX, toY int) string {
	x1, y1 := Anchor(fromX, fromY)
	x2, y2 := Anchor(toX, toY)

	dx := x2 - x1
	if dx < 0 {
		dx = -dx
	}
	half := float64(dx) / 2

	return fmt.Sprintf("M %d %d C %s %d, %s %d, %d %d",
		x1, y1,
		num(float64(x1)+half), y1,
		num(float64(x2)-half), y2,
		x2, y2)
}

// Size returns the width and height needed to draw every node of l.
func Size(l *schema.Layout) (int, int) {
	w, h := 0, 0
	for _, n := range l.Nodes {
		if n.X+NodeWidth > w {
			w = n.X + NodeWidth
		}
		if n.Y+RowPitch > h {
			h = n.Y + RowPitch
		}
	}
	return w, h
}

func num(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.1f", f)
}
