package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pyhub-apps/pdfextract-golang"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the spatial types and their dependencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		reg, err := pdfextract.NewRegistry(cfg.LayoutSettings(), cfg.ReferenceSettings())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TYPE\tDEPENDS ON")
		for _, name := range reg.Names() {
			t, err := reg.Lookup(name)
			if err != nil {
				return err
			}
			deps := "-"
			if len(t.Dependencies) > 0 {
				deps = strings.Join(t.Dependencies, ", ")
			}
			fmt.Fprintf(tw, "%s\t%s\n", name, deps)
		}
		return tw.Flush()
	},
}
