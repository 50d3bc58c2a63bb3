// Package render turns search results into visual artifacts.
//
// The [nodelink] subpackage draws the searched graph with Graphviz and
// overlays the execution trace: expanded nodes are filled, explored edges
// are dashed, and the final path is drawn bold.
//
//	dot := nodelink.ToDOT(g, res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [ToPDF] and [ToPNG] convert any SVG with the external rsvg-convert tool
// from librsvg.
//
// [nodelink]: github.com/matzehuels/pathtrace/pkg/render/nodelink
package render
