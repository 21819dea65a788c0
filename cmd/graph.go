package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/data-eco/eco-go/internal/logger"
	"github.com/data-eco/eco-go/pkg/graphviz"
	"github.com/data-eco/eco-go/pkg/manifest"
)

func graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Create a visual representation of the provenance graph",
		Long: `eco graph renders the provenance recorded in a package manifest using graphviz.

In the generated graph, the stage the package currently sits at is highlighted
in blue.`,
		Run: func(cmd *cobra.Command, _ []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := graphOpts{}
			hydrateOptsFromViper(&opts)

			if err := doGraph(cmd, opts); err != nil {
				logger.Fatalf("Generating graph failed: %v", err)
			}
		},
	}

	cmd.Flags().StringP("input", "i", defaultManifestName,
		"Package manifest whose provenance should be rendered.")
	cmd.Flags().StringP("output", "o", ".",
		"Output directory where .dot and .png files will be generated.")

	return cmd
}

func doGraph(cmd *cobra.Command, opts graphOpts) error {
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

	return graphviz.GenerateGraph(ctx, decoded.Graph, opts.Output)
}
