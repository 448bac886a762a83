// Package drawer renders the pipeline graph in graphviz DOT format.
package drawer

import (
	"fmt"
	"io"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/measure"
)

// DOTDrawer collects steps and links and writes them as a DOT digraph.
type DOTDrawer struct {
	graph graph.Graph[string, string]
	wrt   io.Writer
}

// NewDOTDrawer creates a drawer writing to wrt.
func NewDOTDrawer(wrt io.Writer) *DOTDrawer {
	return &DOTDrawer{
		graph: graph.New(graph.StringHash, graph.Directed()),
		wrt:   wrt,
	}
}

// AddStep adds a step to the pipeline graph.
func (d *DOTDrawer) AddStep(name, shape string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", shape))
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	return nil
}

// AddLink adds a link between parent and children steps.
func (d *DOTDrawer) AddLink(parentName, childrenName string) error {
	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// Draw writes the graph.
func (d *DOTDrawer) Draw() error {
	err := draw.DOT(d.graph, d.wrt, draw.GraphAttribute("rankdir", "LR"))
	if err != nil {
		return errors.Wrap(err, "unable to render dot")
	}

	return nil
}

const maxRGB = 240

// AddMeasure labels steps with their mean computation time and colours links from
// blue (fastest) to red (slowest) by mean transport time.
func (d *DOTDrawer) AddMeasure(msr *measure.Measure) error {
	metrics := msr.AllMetrics()

	var lo, hi time.Duration
	first := true
	for _, mt := range metrics {
		for _, elapsed := range mt.AVGTransportDuration() {
			if first || elapsed < lo {
				lo = elapsed
			}
			if first || elapsed > hi {
				hi = elapsed
			}
			first = false
		}
	}

	for _, name := range msr.Steps() {
		mt := metrics[name]
		_, properties, err := d.graph.VertexWithProperties(name)
		if err != nil {
			continue
		}

		label := name
		if avg := mt.AVGDuration(); avg > 0 {
			label += fmt.Sprintf("\\navg %s, n %d", avg, mt.Total())
		}
		if total := mt.TotalDuration(); total > 0 {
			label += "\\nend " + round(total).String()
		}
		properties.Attributes["label"] = label

		for parent, elapsed := range mt.AVGTransportDuration() {
			hex, err := gradient(elapsed, lo, hi)
			if err != nil {
				return err
			}
			err = d.graph.UpdateEdge(parent, name,
				graph.EdgeAttribute("label", elapsed.String()),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", hex),
			)
			if err != nil && !errors.Is(err, graph.ErrEdgeNotFound) {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

func gradient(v, lo, hi time.Duration) (string, error) {
	fraction := 1.0
	if hi > lo {
		fraction = float64(v-lo) / float64(hi-lo)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	col, err := colors.RGB(uint8(red), 0, uint8(blue))
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return col.ToHEX().String(), nil
}

func round(d time.Duration) time.Duration {
	if d > time.Millisecond {
		return d.Round(time.Millisecond)
	}

	return d.Round(time.Microsecond)
}
