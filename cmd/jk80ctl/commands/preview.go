package commands

import (
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jk80-print/internal/escpos"
	"jk80-print/internal/imaging"
)

// preview -o file.png: render the test receipt without a printer.
func previewCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the test receipt to a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := imaging.Preview(escpos.TestReceiptText(time.Now(), cfg.Model()))
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := png.Encode(f, img); err != nil {
				f.Close()
				return fmt.Errorf("encode %s: %w", out, err)
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "receipt.png", "output file")
	return cmd
}
