// Command bolx runs template-matching extraction from the command line.
//
//	bolx extract --input layouts/ --output out/ --csv summary.csv
//	bolx templates validate --dir templates/
//	bolx token --subject ingest --role service
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bolx",
		Short:         "Extract structured data from bill of lading layouts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExtractCmd(), newTemplatesCmd(), newTokenCmd())
	return root
}
