package main

import (
	"github.com/spf13/cobra"

	"shortr/internal/app"
	"shortr/internal/pkg/logger"
	"shortr/internal/platform/config"
)

const defaultValidityMinutes = 30

// cli is the root command plus the application shared by every subcommand.
// The application is opened in PersistentPreRunE and closed when Execute
// returns, including after a failed command.
type cli struct {
	*cobra.Command
	configPath string
	app        *app.App
}

func newRootCmd() *cli {
	c := &cli{}

	root := &cobra.Command{
		Use:          "shortr",
		Short:        "Shorten URLs and inspect their click analytics.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["offline"] == "true" || cmd.Name() == "help" {
				return nil
			}
			return c.open()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&c.configPath, "config", "configs/config.yaml", "Path to config file")

	root.AddCommand(
		c.shortenCmd(),
		c.batchCmd(),
		c.clickCmd(),
		c.statsCmd(),
		c.listCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.tokenCmd(),
	)
	c.Command = root
	return c
}

func (c *cli) Execute() (err error) {
	defer func() {
		if closeErr := c.close(); err == nil {
			err = closeErr
		}
	}()
	return c.Command.Execute()
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	a := c.app
	c.app = nil
	return a.Close()
}

func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging)
	return cfg, nil
}

func (c *cli) open() error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}
