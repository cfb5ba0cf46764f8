package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsage-ai/docsage/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docsaged",
		Short: "Docsage daemon",
		Long:  "Docsage daemon for serving the document question-answering API",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
