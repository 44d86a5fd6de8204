// Package dendrogram renders a merge tree as a PNG: leaf labels along the
// bottom, U-shaped links at their merge heights, and a dashed reference
// line at the cut distance. Links merged below the cutoff are drawn in
// color; links above it in light grey.
package dendrogram

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"cohere/internal/linkage"
)

var (
	linkColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255} // below cutoff
	aboveColor = color.RGBA{R: 211, G: 211, B: 211, A: 255}
	lineColor  = color.RGBA{R: 128, G: 128, B: 128, A: 255} // cutoff rule
)

// Layout fixes the plotted page size in inches.
const (
	pageWidth  = 14 * vg.Inch
	pageHeight = 8.5 * vg.Inch
)

// Render draws the dendrogram for tree over the given leaf labels and
// writes it to outPath as PNG. name appears in the plot title; cutoff is
// both the color threshold and the dashed reference line.
func Render(tree linkage.Tree, labels []string, cutoff float64, name, outPath string) error {
	n := len(labels)
	if len(tree)+1 != n {
		return fmt.Errorf("dendrogram: %d merges for %d labels", len(tree), n)
	}

	order := leafOrder(tree, n)
	pos := make([]float64, n) // leaf id -> x position
	ordered := make([]string, n)
	for x, leaf := range order {
		pos[leaf] = float64(x)
		ordered[x] = labels[leaf]
	}

	p := plot.New()
	p.Title.Text = "Image: " + name
	p.Title.TextStyle.Font.Size = vg.Points(18)
	p.Y.Label.Text = fmt.Sprintf("Cophenetic Coefficient (Cutoff: %g)", cutoff)
	p.Y.Label.TextStyle.Font.Size = vg.Points(16)
	p.Y.Tick.Label.Font.Size = vg.Points(14)
	p.Y.Min, p.Y.Max = 0, 1

	p.NominalX(ordered...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.Font.Size = vg.Points(8)

	// Each cluster's horizontal center and top height, grown as merges
	// are applied in creation order.
	center := make([]float64, 2*n-1)
	top := make([]float64, 2*n-1)
	for i := 0; i < n; i++ {
		center[i] = pos[i]
	}
	for i, m := range tree {
		id := n + i
		c := linkColor
		if m.Height > cutoff {
			c = aboveColor
		}
		link := plotter.XYs{
			{X: center[m.A], Y: top[m.A]},
			{X: center[m.A], Y: m.Height},
			{X: center[m.B], Y: m.Height},
			{X: center[m.B], Y: top[m.B]},
		}
		line, err := plotter.NewLine(link)
		if err != nil {
			return fmt.Errorf("dendrogram: link %d: %w", i, err)
		}
		line.Color = c
		p.Add(line)

		center[id] = (center[m.A] + center[m.B]) / 2
		top[id] = m.Height
	}

	ref, err := plotter.NewLine(plotter.XYs{
		{X: -0.5, Y: cutoff},
		{X: float64(n) - 0.5, Y: cutoff},
	})
	if err != nil {
		return fmt.Errorf("dendrogram: cutoff line: %w", err)
	}
	ref.Color = lineColor
	ref.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(ref)

	if err := p.Save(pageWidth, pageHeight, outPath); err != nil {
		return fmt.Errorf("dendrogram: save %s: %w", outPath, err)
	}
	return nil
}

// leafOrder returns left-to-right leaf positions from a depth-first walk of
// the tree root, visiting the smaller subtree first (ascending count sort)
// and breaking size ties by lower cluster id.
func leafOrder(tree linkage.Tree, n int) []int {
	sizeOf := func(id int) int {
		if id < n {
			return 1
		}
		return tree[id-n].Size
	}

	var walk func(id int) []int
	walk = func(id int) []int {
		if id < n {
			return []int{id}
		}
		m := tree[id-n]
		first, second := m.A, m.B
		if sizeOf(second) < sizeOf(first) || (sizeOf(second) == sizeOf(first) && second < first) {
			first, second = second, first
		}
		return append(walk(first), walk(second)...)
	}

	root := 2*n - 2
	order := walk(root)

	// A well-formed tree covers every leaf exactly once; fall back to
	// identity order if upstream invariants were broken.
	if len(order) != n {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}
	return order
}
