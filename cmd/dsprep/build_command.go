package main

import (
	"github.com/spf13/cobra"

	"dsprep/internal/pipeline"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var sources sourceFlags
	var output outputFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble, split and write a dataset",
		Long: `Scan the configured sources, resolve their annotations, split the records
into train, validation and test without letting a patient span partitions,
and write the result to the output directory.

Command-line flags override the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sources.apply(cmd, cfg)
			output.apply(cmd, cfg)

			logger, err := ctx.finalizeConfig(cfg)
			if err != nil {
				return err
			}

			summary, err := pipeline.Run(cmd.Context(), cfg, logger, pipeline.WithProgress())
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			renderBuildSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	sources.register(cmd)
	output.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}
