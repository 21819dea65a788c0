package graphviz

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/data-eco/eco-go/pkg/dag"
)

const (
	// graphDot is the name of the file containing the raw graphviz dot language representation of the DAG.
	graphDot = "provenance.dot"

	// graphPng is the final file inside which we put the rendered DAG.
	graphPng = "provenance.png"
)

// GenerateGraph renders a graphviz representation (png) of the provenance DAG
// into the given directory.
func GenerateGraph(ctx context.Context, graph *dag.Graph, outputDir string) error {
	rawGraphvizOutput := GenerateRawOutput(graph)

	graphvizFile := path.Join(outputDir, graphDot)
	pngFile := path.Join(outputDir, graphPng)

	err := os.WriteFile(graphvizFile, []byte(rawGraphvizOutput), 0o644)
	if err != nil {
		return err
	}

	g, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz: %w", err)
	}

	defer func() {
		_ = g.Close()
	}()

	parsed, err := graphviz.ParseBytes([]byte(rawGraphvizOutput))
	if err != nil {
		return fmt.Errorf("failed to parse graphviz: %w", err)
	}

	defer func() {
		_ = parsed.Close()
	}()

	err = g.RenderFilename(ctx, parsed, graphviz.PNG, pngFile)
	if err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}

	return nil
}

// GenerateRawOutput generates the raw graphviz dot language from the given
// provenance graph. Nodes appear in topological order and the frontier node
// is highlighted, so re-generating the file for an unchanged package yields
// identical output.
func GenerateRawOutput(graph *dag.Graph) string {
	rawGraphvizDotLang := []string{
		"digraph provenance {\n",
		"  rankdir = \"LR\";\n",
		"  node[fontsize=10, shape=box, height=0.4];\n",
		"  edge[fontsize=10, arrowhead=vee];\n",
		"\n",
	}

	if graph != nil {
		frontier, _ := graph.Frontier()

		for _, node := range graph.Nodes() {
			color := "white"
			if node.ID == frontier {
				color = "lightblue"
			}

			rawGraphvizDotLang = append(rawGraphvizDotLang, fmt.Sprintf(
				"  \"%s\" [label=\"%s\", fillcolor=%s, style=filled];\n",
				node.ID,
				node.Label,
				color,
			))
		}

		for _, edge := range graph.Edges() {
			rawGraphvizDotLang = append(rawGraphvizDotLang, fmt.Sprintf(
				"  \"%s\" -> \"%s\" [dir=forward];\n",
				edge.From,
				edge.To,
			))
		}
	}

	rawGraphvizDotLang = append(rawGraphvizDotLang, "}\n")

	return strings.Join(rawGraphvizDotLang, "")
}
