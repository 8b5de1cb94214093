package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jk80-print/internal/printer"
)

// print [name|mac]: connect to a paired printer and print the test receipt.
func printCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "print [name|mac]",
		Short: "Print the test receipt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var query string
			if len(args) == 1 {
				query = args[0]
			}
			dev, err := printer.FindDevice(a.Directory.ListCandidateDevices(cmd.Context()), query)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if wait > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, wait)
				defer cancel()
			}
			err = a.Manager.ConnectWait(ctx, dev)
			fmt.Fprintln(cmd.ErrOrStderr(), printer.StatusText(printer.Result{Device: dev, Err: err}))
			if err != nil {
				return err
			}

			if err := a.Manager.PrintTest(time.Now()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "printed")
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "give up waiting for the connection after this long")
	cmd.Flags().BoolVar(&allDevices, "all", false, "consider every paired device, not just JK-80PL printers")
	return cmd
}
