package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/spf13/cobra"

	"github.com/tidelang/tide/pkg/embed"
	"github.com/tidelang/tide/pkg/loader"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/signals"
)

func newRunCmd() *cobra.Command {
	var (
		step      bool
		profile   bool
		inputPath string
	)

	cmd := &cobra.Command{
		Use:   "run <file.tir>",
		Short: "Assemble and run a tide IR source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if step && profile {
				return errors.New("--step and --profile are mutually exclusive")
			}

			src, err := os.ReadFile(args[0])
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

			input := pipeline.Empty()
			if inputPath != "" {
				input, err = loader.Load(cmd.Context(), inputPath)
				if err != nil {
					return err
				}
			}

			var result pipeline.Data
			switch {
			case step:
				result, err = rt.StepThrough(string(src), input, cmd.OutOrStdout(), waitForEnter(cmd.InOrStdin()))
			case profile:
				var report *dataframe.DataFrame
				result, report, err = rt.Profile(string(src), input)
				if err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), report)
				}
			default:
				result, err = rt.ExecuteWithInput(string(src), input)
			}
			if err != nil {
				var ie *signals.InterruptedError
				if errors.As(err, &ie) {
					sig.Reset()
					return errors.New("interrupted")
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&step, "step", false, "single-step each instruction (press Enter to advance)")
	cmd.Flags().BoolVar(&profile, "profile", false, "print a per-instruction profile after the run")
	cmd.Flags().StringVar(&inputPath, "input", "", "load a CSV/JSON/Parquet file as pipeline input")
	return cmd
}

// interruptSignals wires SIGINT to a shared flag behind a Signals handle.
// stop detaches the handler.
func interruptSignals() (signals.Signals, func()) {
	flag := new(atomic.Bool)
	sig := signals.New(flag)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		for range ch {
			sig.Trigger()
		}
	}()
	return sig, func() { signal.Stop(ch); close(ch) }
}

// waitForEnter returns the stepper wait callback: discard anything already
// queued, then block until the user presses Enter. Without the discard,
// pre-typed input would advance several steps at once.
func waitForEnter(in io.Reader) func() {
	reader := bufio.NewReader(in)
	return func() {
		if n := reader.Buffered(); n > 0 {
			_, _ = reader.Discard(n)
		}
		_, _ = reader.ReadString('\n')
	}
}
