// Command dcr classifies the lines of documents from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dcr",
		Short:         "Classify document lines into headers, footers, headings and lists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(classifyCmd())
	root.AddCommand(rulesCmd())
	return root
}
