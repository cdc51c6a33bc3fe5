package filtergraph

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	labelPattern      = regexp.MustCompile(`^(?:[0-9]+(?::[avs](?::[0-9]+)?)?|[A-Za-z_][A-Za-z0-9_]*)$`)
	namePattern       = regexp.MustCompile(`^[a-z0-9_]+$`)
	streamSpecPattern = regexp.MustCompile(`^[0-9]+`)
)

// Option is one key=value pair of a filter.
type Option struct {
	Key   string
	Value Value
}

// Opt constructs an Option.
func Opt(key string, value Value) Option {
	return Option{Key: key, Value: value}
}

// Filter is a single filter node.
type Filter struct {
	Name    string
	Options []Option
}

// Chain is a linear sequence of filters between labelled pads.
type Chain struct {
	inputs  []string
	filters []Filter
	outputs []string
}

// Filter appends a filter to the chain.
func (c *Chain) Filter(name string, opts ...Option) *Chain {
	c.filters = append(c.filters, Filter{Name: name, Options: opts})
	return c
}

// To sets the output labels of the chain.
func (c *Chain) To(outputs ...string) *Chain {
	c.outputs = append(c.outputs, outputs...)
	return c
}

// Graph is an ordered filter graph.
type Graph struct {
	chains []*Chain
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// Chain starts a new chain consuming the given input labels.
func (g *Graph) Chain(inputs ...string) *Chain {
	c := &Chain{inputs: inputs}
	g.chains = append(g.chains, c)
	return c
}

// Outputs returns the labels produced but never consumed inside the graph.
// These are the pads a caller maps to output streams.
func (g *Graph) Outputs() []string {
	consumed := map[string]bool{}
	for _, c := range g.chains {
		for _, in := range c.inputs {
			consumed[in] = true
		}
	}
	var outs []string
	for _, c := range g.chains {
		for _, out := range c.outputs {
			if !consumed[out] {
				outs = append(outs, out)
			}
		}
	}
	return outs
}

// Render validates the graph and returns its -filter_complex form.
func (g *Graph) Render() (string, error) {
	if g == nil || len(g.chains) == 0 {
		return "", errors.New("filter graph: no chains")
	}
	produced := map[string]bool{}
	consumed := map[string]bool{}
	rendered := make([]string, 0, len(g.chains))

	for i, c := range g.chains {
		if len(c.filters) == 0 {
			return "", fmt.Errorf("filter graph: chain %d has no filters", i)
		}
		var b strings.Builder
		for _, in := range c.inputs {
			if !labelPattern.MatchString(in) {
				return "", fmt.Errorf("filter graph: chain %d: invalid input label %q", i, in)
			}
			if !streamSpecPattern.MatchString(in) {
				if !produced[in] {
					return "", fmt.Errorf("filter graph: chain %d: label %q used before it is produced", i, in)
				}
				if consumed[in] {
					return "", fmt.Errorf("filter graph: chain %d: label %q consumed twice", i, in)
				}
				consumed[in] = true
			}
			b.WriteString("[" + in + "]")
		}
		for j, f := range c.filters {
			if j > 0 {
				b.WriteByte(',')
			}
			text, err := renderFilter(f)
			if err != nil {
				return "", fmt.Errorf("filter graph: chain %d: %w", i, err)
			}
			b.WriteString(text)
		}
		for _, out := range c.outputs {
			if !labelPattern.MatchString(out) || streamSpecPattern.MatchString(out) {
				return "", fmt.Errorf("filter graph: chain %d: invalid output label %q", i, out)
			}
			if produced[out] {
				return "", fmt.Errorf("filter graph: chain %d: label %q produced twice", i, out)
			}
			produced[out] = true
			b.WriteString("[" + out + "]")
		}
		rendered = append(rendered, b.String())
	}
	return strings.Join(rendered, ";"), nil
}

// String renders the graph, returning an empty string when it is invalid.
func (g *Graph) String() string {
	s, err := g.Render()
	if err != nil {
		return ""
	}
	return s
}

func renderFilter(f Filter) (string, error) {
	if !namePattern.MatchString(f.Name) {
		return "", fmt.Errorf("invalid filter name %q", f.Name)
	}
	if len(f.Options) == 0 {
		return f.Name, nil
	}
	parts := make([]string, 0, len(f.Options))
	for _, opt := range f.Options {
		if !namePattern.MatchString(opt.Key) {
			return "", fmt.Errorf("%s: invalid option key %q", f.Name, opt.Key)
		}
		if opt.Value == nil {
			return "", fmt.Errorf("%s: option %s has no value", f.Name, opt.Key)
		}
		value, err := opt.Value.render()
		if err != nil {
			return "", fmt.Errorf("%s: option %s: %w", f.Name, opt.Key, err)
		}
		parts = append(parts, opt.Key+"="+value)
	}
	return f.Name + "=" + strings.Join(parts, ":"), nil
}
