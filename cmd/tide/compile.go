package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tidelang/tide/pkg/embed"
	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/span"
)

func newCompileCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compile <file.tir>",
		Short: "Assemble a tide IR source file to bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			block, err := embed.New().Compile(string(src))
			if err != nil {
				return err
			}
			data, err := ir.SerializeBlock(block)
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], ".tir") + ".tbc"
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d instructions)\n", output, block.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: source with .tbc extension)")
	return cmd
}

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <file.tbc>",
		Short: "Run a compiled bytecode file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			block, err := ir.DeserializeBlock(data)
			if err != nil {
				return err
			}

			logger, closeLogs, err := newLogger()
			if err != nil {
				return err
			}
			defer closeLogs()

			rt := embed.New()
			rt.Engine().SetLogger(logger)

			sig, stop := interruptSignals()
			defer stop()
			rt.Engine().SetSignals(sig)

			result, err := rt.Engine().EvalBlock(block, pipeline.Empty())
			if err != nil {
				return err
			}
			result, err = result.Collect(span.Unknown())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <file.tir|file.tbc>",
		Short: "Print the disassembly of a source or bytecode file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			rt := embed.New()
			var block *ir.Block
			if strings.HasSuffix(args[0], ".tbc") {
				block, err = ir.DeserializeBlock(data)
			} else {
				block, err = rt.Compile(string(data))
			}
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), ir.Disassemble(block, rt.Engine()))
			return nil
		},
	}
}
