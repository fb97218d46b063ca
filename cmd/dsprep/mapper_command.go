package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dsprep/internal/classmap"
	"dsprep/internal/config"
	"dsprep/internal/services"
	"dsprep/internal/textutil"
)

// mapperClass describes one canonical class of a class mapper file.
type mapperClass struct {
	Class    string   `json:"class"`
	Tokens   []string `json:"tokens"`
	Healthy  bool     `json:"healthy"`
	Positive bool     `json:"positive"`
}

type mapperReport struct {
	Path     string              `json:"path"`
	Mappings map[string][]string `json:"mappings"`
	Classes  []mapperClass       `json:"classes"`
}

func newMapperCommand() *cobra.Command {
	mapperCmd := &cobra.Command{
		Use:         "mapper",
		Short:       "Class mapper utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	mapperCmd.AddCommand(newMapperCheckCommand())
	return mapperCmd
}

func newMapperCheckCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Parse a class mapper file and print what it maps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("resolve mapper path: %w", err)
			}
			dict, err := classmap.LoadFile(path)
			if err != nil {
				return services.Wrap(services.ErrValidation, "mapper", "check", "", err)
			}
			report := buildMapperReport(path, dict)

			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mapper: %s\n", report.Path)
			fmt.Fprintf(out, "%d tokens map to %d classes\n", len(report.Mappings), len(report.Classes))
			rows := make([][]string, 0, len(report.Classes))
			for _, c := range report.Classes {
				rows = append(rows, []string{
					textutil.DisplayLabel(c.Class),
					c.Class,
					strings.Join(c.Tokens, ", "),
					yesNo(c.Healthy),
					yesNo(c.Positive),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Label", "Class", "Tokens", "Healthy", "Positive"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the mapper as JSON")
	return cmd
}

func buildMapperReport(path string, dict *classmap.Dict) mapperReport {
	report := mapperReport{Path: path, Mappings: make(map[string][]string)}
	tokensByClass := make(map[string][]string)
	for _, token := range dict.Tokens() {
		classes := dict.Map(token)
		report.Mappings[token] = classes
		for _, class := range classes {
			tokensByClass[class] = append(tokensByClass[class], token)
		}
	}
	for _, class := range dict.Classes() {
		report.Classes = append(report.Classes, mapperClass{
			Class:    class,
			Tokens:   tokensByClass[class],
			Healthy:  dict.IsHealthy(class),
			Positive: dict.IsPositive(class),
		})
	}
	return report
}
