package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/tariff-cli/internal/tariff"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeSchema(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func writeSchema(out io.Writer) error {
	r := &jsonschema.Reflector{}
	s := r.Reflect(tariff.Aggregate{})
	s.Title = "Tariff artifact"
	s.Description = "Price records keyed by contract type, then by subscribed power in kVA."

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(s), "schema: encode")
}
