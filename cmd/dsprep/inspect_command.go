package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"dsprep/internal/pipeline"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var sources sourceFlags
	var withSplit bool
	var jsonOutput bool
	var dump bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Scan and resolve the sources without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sources.apply(cmd, cfg)

			logger, err := ctx.finalizeConfig(cfg)
			if err != nil {
				return err
			}

			inspection, err := pipeline.Inspect(cmd.Context(), cfg, logger, withSplit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case dump:
				dumper := spew.ConfigState{
					Indent:                  "  ",
					DisablePointerAddresses: true,
					DisableCapacities:       true,
					SortKeys:                true,
				}
				dumper.Fdump(out, inspection.Records)
				return nil
			case jsonOutput:
				return writeJSON(cmd, inspection)
			default:
				renderInspection(out, inspection)
				return nil
			}
		},
	}

	sources.register(cmd)
	cmd.Flags().BoolVar(&withSplit, "split", false, "Also partition the records and show partition counts")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the inspection as JSON")
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump every resolved record")
	return cmd
}
