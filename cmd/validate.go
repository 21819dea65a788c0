package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/data-eco/eco-go/internal/logger"
	"github.com/data-eco/eco-go/pkg/dag"
	"github.com/data-eco/eco-go/pkg/manifest"
)

func validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the provenance of a package manifest",
		Long: `eco validate checks that the provenance embedded in a package manifest
satisfies every structural invariant: the graph is acyclic, node ids are
unique, edges reference existing nodes, and exactly one stage is the current
tip. All violations are reported in a single run.`,
		Run: func(cmd *cobra.Command, _ []string) {
			bindPFlagsSnakeCase(cmd.Flags())

			opts := validateOpts{}
			hydrateOptsFromViper(&opts)

			if err := doValidate(cmd, opts); err != nil {
				logger.Fatalf("Validation failed: %v", err)
			}
		},
	}

	cmd.Flags().StringP("input", "i", defaultManifestName,
		"Package manifest to validate.")

	return cmd
}

func doValidate(cmd *cobra.Command, opts validateOpts) error {
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
		var validationErr *dag.ValidationError
		if errors.As(err, &validationErr) {
			for _, violation := range validationErr.Violations {
				logger.Errorf("invariant violated: %s", violation)
			}
		}

		return err
	}

	logger.Infof("Manifest %s is valid: %d stage(s) recorded", opts.Input, decoded.Graph.Len())

	return nil
}
