package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/tariff-cli/internal/converter"
	"github.com/sells-group/tariff-cli/internal/tariff"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "List registered contract types and their sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatContracts(os.Stdout, converter.NewRegistry(cfg.Sources))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(contractsCmd)
}

// formatContracts writes one row per registered converter, in registration order.
func formatContracts(out io.Writer, reg *converter.Registry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CONTRACT\tKIND\tSUBSCRIPTION\tSOURCES")
	_, _ = fmt.Fprintln(w, "--------\t----\t------------\t-------")
	for _, c := range reg.All() {
		kind, sub := "-", "-"
		if info, ok := tariff.LookupContract(c.Name()); ok {
			kind = string(info.Kind)
			sub = "required"
			if info.SubscriptionOptional {
				sub = "optional"
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name(), kind, sub, strings.Join(c.Sources(), ", "))
	}
	_ = w.Flush()
}
