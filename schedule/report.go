/*
NAME
  report.go

DESCRIPTION
  report.go renders a bar chart of a scheduling run's per-chunk weight
  distribution.

AUTHOR
  pyisle contributors

LICENSE
  Part of pyisle (github.com/floriandotorg/pyisle), an independent
  reimplementation not affiliated with or endorsed by the original
  game's publishers.
*/

package schedule

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/floriandotorg/pyisle/errkind"
)

// WriteReport renders a bar chart of each chunk's total weight to dst as
// a PNG, so an operator can visually confirm BalancedChunks actually
// balanced a run. This is a diagnostic convenience; nothing in the core
// extraction path depends on it.
func WriteReport[T Weighted](dst io.Writer, chunks [][]T) error {
	const op = "schedule.WriteReport"

	totals := make(plotter.Values, len(chunks))
	for i, chunk := range chunks {
		var sum float64
		for _, item := range chunk {
			sum += item.Weight()
		}
		totals[i] = sum
	}

	p := plot.New()
	p.Title.Text = "chunk weight distribution"
	p.Y.Label.Text = "total weight"

	bars, err := plotter.NewBarChart(totals, vg.Points(20))
	if err != nil {
		return errkind.New(errkind.MalformedInput, op, errors.Wrap(err, "building bar chart"))
	}
	p.Add(bars)

	labels := make([]string, len(chunks))
	for i := range chunks {
		labels[i] = fmt.Sprintf("chunk %d", i)
	}
	p.NominalX(labels...)

	writer, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return errkind.New(errkind.MalformedInput, op, errors.Wrap(err, "rendering report"))
	}
	if _, err := writer.WriteTo(dst); err != nil {
		return errkind.New(errkind.MalformedInput, op, errors.Wrap(err, "writing report"))
	}
	return nil
}
