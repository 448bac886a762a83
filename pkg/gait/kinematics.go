package gait

import (
	"strconv"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// Link connects a parent segment to a child segment through a joint angle:
// child = parent + Sign*joint.
type Link struct {
	Parent string
	Child  string
	Joint  string
	Sign   int
}

// DefaultLinks is the lower-limb chain. Knee flexion is positive, so it subtracts.
func DefaultLinks() []Link {
	return []Link{
		{Parent: "pelvis", Child: "thigh", Joint: "hip_flexion", Sign: 1},
		{Parent: "thigh", Child: "shank", Joint: "knee_flexion", Sign: -1},
		{Parent: "shank", Child: "foot", Joint: "ankle_dorsiflexion", Sign: 1},
	}
}

// Chain evaluates segment angles in topological order.
type Chain struct {
	root  string
	order []string
	in    map[string]graph.Edge[string]
}

// NewChain builds a chain. The links must form a single rooted tree.
func NewChain(links ...Link) (*Chain, error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic())
	for _, link := range links {
		for _, segment := range []string{link.Parent, link.Child} {
			err := g.AddVertex(segment)
			if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
				return nil, errors.Wrapf(err, "unable to add segment %s", segment)
			}
		}
		err := g.AddEdge(link.Parent, link.Child,
			graph.EdgeAttribute("joint", link.Joint),
			graph.EdgeWeight(link.Sign),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to link %s to %s", link.Parent, link.Child)
		}
	}

	order, err := graph.TopologicalSort(g)
	if err != nil {
		return nil, errors.Wrap(err, "unable to order kinematic chain")
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read kinematic chain")
	}

	chain := &Chain{order: order, in: make(map[string]graph.Edge[string])}
	for _, segment := range order {
		parents := predecessors[segment]
		switch len(parents) {
		case 0:
			if chain.root != "" {
				return nil, errors.Errorf("kinematic chain has two roots: %s and %s", chain.root, segment)
			}
			chain.root = segment
		case 1:
			for _, edge := range parents {
				chain.in[segment] = edge
			}
		default:
			return nil, errors.Errorf("segment %s has %d parents", segment, len(parents))
		}
	}

	return chain, nil
}

// Segments returns the non-root segments in evaluation order.
func (c *Chain) Segments() []string {
	return append([]string(nil), c.order[1:]...)
}

// Root returns the reference segment.
func (c *Chain) Root() string {
	return c.root
}

// Evaluate derives every segment angle reachable from root. joint returns the
// samples of a joint angle; evaluation of a branch stops at the first missing joint.
func (c *Chain) Evaluate(root []float64, joint func(name string) ([]float64, bool)) map[string][]float64 {
	angles := map[string][]float64{c.root: root}
	for _, segment := range c.order {
		edge, ok := c.in[segment]
		if !ok {
			continue
		}
		parent, ok := angles[edge.Source]
		if !ok {
			continue
		}
		values, ok := joint(edge.Properties.Attributes["joint"])
		if !ok || len(values) != len(parent) {
			continue
		}
		sign := float64(edge.Properties.Weight)
		out := make([]float64, len(parent))
		for i := range parent {
			out[i] = parent[i] + sign*values[i]
		}
		angles[segment] = out
	}
	delete(angles, c.root)

	return angles
}

func (c *Chain) String() string {
	s := c.root
	for _, segment := range c.order[1:] {
		edge := c.in[segment]
		s += " -> " + segment + "(" + edge.Properties.Attributes["joint"] + "," + strconv.Itoa(edge.Properties.Weight) + ")"
	}

	return s
}

var defaultChain = mustChain(DefaultLinks()...)

func mustChain(links ...Link) *Chain {
	chain, err := NewChain(links...)
	if err != nil {
		panic(err)
	}

	return chain
}
