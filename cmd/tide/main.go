// Command tide runs tide IR programs: assemble, execute, disassemble, and
// debug (step or profile) compiled blocks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	logLevel string
	logFile  string
)

func main() {
	root := &cobra.Command{
		Use:           "tide",
		Short:         "tide IR toolchain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")

	root.AddCommand(
		newRunCmd(),
		newCompileCmd(),
		newExecCmd(),
		newDisasmCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tide: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tide version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tide %s\n", version)
		},
	}
}
