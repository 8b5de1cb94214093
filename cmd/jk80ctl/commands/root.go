package commands

import (
	"os"

	"github.com/spf13/cobra"

	"jk80-print/internal/app"
	"jk80-print/internal/config"
	"jk80-print/internal/logging"
)

var (
	configPath    string
	logLevel      string
	assumeGranted bool
	allDevices    bool

	cfg config.Config
)

// Execute runs the jk80ctl command tree
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jk80ctl",
		Short:         "Print test receipts on a paired JK-80PL printer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/jk80-print/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&assumeGranted, "assume-granted", false, "skip bluetooth permission checks")

	root.AddCommand(devicesCmd(), printCmd(), portsCmd(), previewCmd())
	return root
}

// openApp builds the printer stack for commands that talk to Bluetooth
func openApp(cmd *cobra.Command) (*app.App, error) {
	log := logging.New(cfg.LogLevel, os.Stderr)
	a, err := app.New(cfg, log, app.Options{AssumeGranted: assumeGranted, AllDevices: allDevices})
	if err != nil {
		return nil, err
	}
	a.Start(cmd.Context())
	return a, nil
}
