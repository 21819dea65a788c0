package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/data-eco/eco-go/internal/logger"
	"github.com/data-eco/eco-go/pkg/dag"
	"github.com/data-eco/eco-go/pkg/manifest"
)

func infoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the provenance recorded in a package manifest",
		Long: `eco info prints the processing stages recorded in a package manifest,
in topological order, along with the lineage of each stage.`,
		Run: func(cmd *cobra.Command, _ []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := infoOpts{}
			hydrateOptsFromViper(&opts)

			if err := doInfo(cmd, opts); err != nil {
				logger.Fatalf("Info failed: %v", err)
			}
		},
	}

	cmd.Flags().StringP("input", "i", defaultManifestName,
		"Package manifest to inspect.")

	return cmd
}

func doInfo(cmd *cobra.Command, opts infoOpts) error {
	ctx := cmd.Context()

	backend, err := newStore(ctx, opts.S3Bucket)
	if err != nil {
		return err
	}

	raw, err := backend.Fetch(ctx, opts.Input)
	if err != nil {
		return fmt.Errorf("could not fetch manifest %s: %w", opts.Input, err)
	}

	decoded, err := manifest.Decode(raw, manifest.DecodeOpts{})
	if err != nil {
		return err
	}

	frontier, err := decoded.Graph.Frontier()
	if err != nil {
		return err
	}

	printGraphTable(decoded.Graph, frontier)

	fmt.Printf("\n%d stage(s), current: %s\n", decoded.Graph.Len(), frontier)

	return nil
}

func printGraphTable(graph *dag.Graph, frontier string) {
	parents := map[string][]string{}
	for _, edge := range graph.Edges() {
		parents[edge.To] = append(parents[edge.To], edge.From)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	var data [][]string

	for _, node := range graph.Nodes() {
		id := node.ID
		if id == frontier {
			id += " *"
		}

		data = append(data, []string{
			id,
			node.Label,
			node.CreatedAt,
			strings.Join(parents[node.ID], ", "),
			strconv.Itoa(len(node.Annotations)),
			strconv.Itoa(len(node.Views)),
		})
	}

	table.AppendBulk(data)

	table.SetHeader([]string{"Id", "Label", "Created At", "Parents", "Annotations", "Views"})
	table.Render()
}
