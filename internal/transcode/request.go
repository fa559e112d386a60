package transcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Arg is a single filter argument. An empty Key makes it positional.
// Quote wraps the value in single quotes; the value must already be escaped.
type Arg struct {
	Key   string
	Value string
	Quote bool
}

// Filter is one ffmpeg filter invocation.
type Filter struct {
	Name string
	Args []Arg
}

// NewFilter builds a filter from alternating key/value pairs.
func NewFilter(name string, kv ...string) Filter {
	f := Filter{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		f.Args = append(f.Args, Arg{Key: kv[i], Value: kv[i+1]})
	}
	return f
}

// Positional builds a filter whose arguments are unnamed.
func Positional(name string, values ...string) Filter {
	f := Filter{Name: name}
	for _, v := range values {
		f.Args = append(f.Args, Arg{Value: v})
	}
	return f
}

// With returns a copy of f with an extra argument appended.
func (f Filter) With(arg Arg) Filter {
	out := Filter{Name: f.Name, Args: append(append([]Arg(nil), f.Args...), arg)}
	return out
}

func (f Filter) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	parts := make([]string, 0, len(f.Args))
	for _, arg := range f.Args {
		value := arg.Value
		if arg.Quote {
			value = "'" + value + "'"
		}
		if arg.Key == "" {
			parts = append(parts, value)
			continue
		}
		parts = append(parts, arg.Key+"="+value)
	}
	return f.Name + "=" + strings.Join(parts, ":")
}

// Chain is a comma-separated sequence of filters.
type Chain []Filter

func (c Chain) String() string {
	parts := make([]string, len(c))
	for i, f := range c {
		parts[i] = f.String()
	}
	return strings.Join(parts, ",")
}

// Node is one labelled chain inside a filter graph.
type Node struct {
	Inputs  []string
	Chain   Chain
	Outputs []string
}

func (n Node) String() string {
	var b strings.Builder
	for _, label := range n.Inputs {
		b.WriteString("[" + label + "]")
	}
	b.WriteString(n.Chain.String())
	for _, label := range n.Outputs {
		b.WriteString("[" + label + "]")
	}
	return b.String()
}

// Graph is a semicolon-separated filter graph.
type Graph []Node

func (g Graph) String() string {
	parts := make([]string, len(g))
	for i, n := range g {
		parts[i] = n.String()
	}
	return strings.Join(parts, ";")
}

// Input is one "-i" source with the options that precede it.
type Input struct {
	Path    string
	Options []string
}

// Looped repeats the input forever.
func Looped(path string) Input {
	return Input{Path: path, Options: []string{"-stream_loop", "-1"}}
}

// StillImage turns an image into a video stream of the given length.
func StillImage(path string, seconds float64, fps int) Input {
	return Input{Path: path, Options: []string{
		"-loop", "1",
		"-t", Seconds(seconds),
		"-framerate", strconv.Itoa(fps),
	}}
}

// Request describes one synchronous ffmpeg invocation.
type Request struct {
	// Operation names the request in logs and diagnostics.
	Operation     string
	Inputs        []Input
	VideoFilter   Chain
	Graph         Graph
	Maps          []string
	OutputOptions []string
	Output        string
}

// ErrInvalidRequest reports a request that cannot be serialized.
var ErrInvalidRequest = errors.New("invalid transcode request")

// Validate checks the request shape.
func (r Request) Validate() error {
	if len(r.Inputs) == 0 {
		return fmt.Errorf("%w: %s: no inputs", ErrInvalidRequest, r.Operation)
	}
	for i, in := range r.Inputs {
		if strings.TrimSpace(in.Path) == "" {
			return fmt.Errorf("%w: %s: input %d has empty path", ErrInvalidRequest, r.Operation, i)
		}
	}
	if strings.TrimSpace(r.Output) == "" {
		return fmt.Errorf("%w: %s: empty output", ErrInvalidRequest, r.Operation)
	}
	if len(r.VideoFilter) > 0 && len(r.Graph) > 0 {
		return fmt.Errorf("%w: %s: both filter chain and graph set", ErrInvalidRequest, r.Operation)
	}
	return nil
}

// Args serializes the request into an ffmpeg argument vector. Output is
// always overwritten.
func (r Request) Args() ([]string, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, in := range r.Inputs {
		args = append(args, in.Options...)
		args = append(args, "-i", in.Path)
	}
	switch {
	case len(r.VideoFilter) > 0:
		args = append(args, "-vf", r.VideoFilter.String())
	case len(r.Graph) > 0:
		args = append(args, "-filter_complex", r.Graph.String())
	}
	for _, m := range r.Maps {
		args = append(args, "-map", m)
	}
	args = append(args, r.OutputOptions...)
	args = append(args, r.Output)
	return args, nil
}

// Seconds formats a duration in seconds for ffmpeg options.
func Seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Label wraps a stream specifier for -map on a graph output.
func Label(name string) string {
	return "[" + name + "]"
}
