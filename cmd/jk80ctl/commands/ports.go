package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"jk80-print/internal/printer"
)

// ports: list serial ports usable with the serial transport.
func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports (bound /dev/rfcommN, Bluetooth COM ports)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := printer.ListSerialPorts()
			if err != nil {
				return err
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}
