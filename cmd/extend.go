package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/data-eco/eco-go/internal/logger"
	"github.com/data-eco/eco-go/pkg/extend"
	"github.com/data-eco/eco-go/pkg/manifest"
	"github.com/data-eco/eco-go/pkg/store"
)

func extendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extend",
		Short: "Record a processing stage into a package manifest",
		Long: `eco extend records a new processing stage at the tip of the provenance graph.

With a single --input, the output package continues that package's history.
With several --input flags (fan-in), the upstream histories are merged first,
then the new stage is linked to every upstream tip. Without any --input, the
output package starts a fresh history (a pipeline root).`,
		Run: func(cmd *cobra.Command, _ []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := extendOpts{}
			hydrateOptsFromViper(&opts)

			if err := doExtend(cmd, opts); err != nil {
				logger.Fatalf("Extend failed: %v", err)
			}
		},
	}

	cmd.Flags().StringArrayP("input", "i", nil,
		"Upstream package manifest. Repeat the flag for fan-in stages consuming several packages.")
	cmd.Flags().StringP("output", "o", defaultManifestName,
		"Where to write the resulting package manifest.")
	cmd.Flags().String("label", "",
		"Human-readable name of the processing stage being recorded.")
	cmd.Flags().String("id", "",
		"Force the identity of the new stage node. Defaults to a generated id.")
	cmd.Flags().StringArray("annotation", nil,
		"Stage annotation, either inline markdown or a path to a text/markdown file. Repeatable.")
	cmd.Flags().StringArray("view", nil,
		"Stage view spec, either an inline vega-lite JSON document or a path to one. Repeatable.")
	cmd.Flags().String("metadata", "",
		"Path to a YAML or JSON file holding extra stage metadata, recorded as opaque stats.")
	cmd.Flags().Bool("content-ids", false,
		"Derive node ids from the stage content instead of random UUIDs, so re-running "+
			"an identical pipeline yields identical provenance.")
	cmd.Flags().Bool("first-stage", false,
		"Accept an input manifest without provenance. Use when adopting a package "+
			"produced outside any pipeline as the first stage of one.")

	return cmd
}

func doExtend(cmd *cobra.Command, opts extendOpts) error {
	if opts.Label == "" {
		return errors.New("--label is required")
	}

	ctx := cmd.Context()

	backend, err := newStore(ctx, opts.S3Bucket)
	if err != nil {
		return err
	}

	upstreams, err := loadUpstreams(cmd, backend, opts)
	if err != nil {
		return err
	}

	stage, err := buildStage(opts)
	if err != nil {
		return err
	}

	extender := extend.New()
	if opts.ContentIDs {
		extender.IDs = extend.ContentIDs{}
	}

	result, err := extender.Extend(upstreams, stage)
	if err != nil {
		return err
	}

	encoded, err := manifest.Encode(result)
	if err != nil {
		return err
	}

	if err := backend.Write(ctx, opts.Output, encoded); err != nil {
		return fmt.Errorf("could not write manifest %s: %w", opts.Output, err)
	}

	frontier, err := result.Graph.Frontier()
	if err != nil {
		return err
	}

	logger.Infof("Recorded stage %q as node %s in %s", opts.Label, frontier, opts.Output)

	return nil
}

func loadUpstreams(cmd *cobra.Command, backend store.Store, opts extendOpts) ([]manifest.Manifest, error) {
	raws, err := store.FetchAll(cmd.Context(), backend, opts.Input)
	if err != nil {
		return nil, fmt.Errorf("could not fetch upstream manifests: %w", err)
	}

	decodeOpts := manifest.DecodeOpts{AllowMissingProvenance: opts.FirstStage}

	upstreams := make([]manifest.Manifest, 0, len(raws))

	for i, raw := range raws {
		decoded, err := manifest.Decode(raw, decodeOpts)
		if err != nil {
			return nil, fmt.Errorf("upstream manifest %s: %w", opts.Input[i], err)
		}

		upstreams = append(upstreams, decoded)
	}

	return upstreams, nil
}

func buildStage(opts extendOpts) (extend.Stage, error) {
	stage := extend.Stage{
		ID:    opts.ID,
		Label: opts.Label,
	}

	for _, value := range opts.Annotation {
		annotation, err := manifest.ParseAnnotation(value)
		if err != nil {
			return extend.Stage{}, err
		}

		stage.Annotations = append(stage.Annotations, annotation)
	}

	for _, value := range opts.View {
		view, err := manifest.ParseView(value)
		if err != nil {
			return extend.Stage{}, err
		}

		stage.Views = append(stage.Views, view)
	}

	if opts.Metadata != "" {
		stats, err := manifest.LoadStats(opts.Metadata)
		if err != nil {
			return extend.Stage{}, err
		}

		stage.Stats = stats
	}

	return stage, nil
}
