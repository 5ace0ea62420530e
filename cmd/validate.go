package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sells-group/tariff-cli/internal/output"
	"github.com/sells-group/tariff-cli/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [artifact]",
	Short: "Validate an existing tariff artifact",
	Long:  "Reads a JSON or YAML artifact (default output.path) and checks it against the canonical record rules and per-contract invariants.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Output.Path
		if len(args) == 1 {
			path = args[0]
		}
		return runValidate(afero.NewOsFs(), path, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(fsys afero.Fs, path string, out io.Writer) error {
	agg, err := output.Read(fsys, path)
	if err != nil {
		return err
	}
	if err := validate.New().Validate(agg); err != nil {
		return eris.Wrapf(err, "validate %s", path)
	}
	_, _ = fmt.Fprintf(out, "%s: valid (%d contracts, %d records)\n", path, len(agg), agg.RecordCount())
	return nil
}
