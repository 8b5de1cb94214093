package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// devices: list paired printers.
func devicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List paired printers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			devices := a.Directory.ListCandidateDevices(cmd.Context())
			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no paired printers found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tADDRESS\tSPP")
			for _, d := range devices {
				spp := "?"
				if len(d.UUIDs) > 0 {
					spp = fmt.Sprint(d.AdvertisesSPP())
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.MAC, spp)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&allDevices, "all", false, "show every paired device, not just JK-80PL printers")
	return cmd
}
