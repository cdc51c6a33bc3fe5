// Package filtergraph builds ffmpeg -filter_complex expressions from typed
// nodes instead of string concatenation.
//
// A Graph is an ordered list of chains. Each chain consumes labelled inputs,
// applies filters in sequence and publishes labelled outputs:
//
//	g := filtergraph.New()
//	g.Chain("3").Filter("scale", filtergraph.Opt("w", filtergraph.Int(216)), filtergraph.Opt("h", filtergraph.Int(-1))).To("logo")
//	expr, err := g.Render()
//
// Option values are typed. Text values are quoted and escaped with
// textutil.EscapeFilterText, and Render rejects any value that could change
// the structure of the graph (stray quotes, separators, brackets, or
// characters the escaping contract cannot represent).
package filtergraph
