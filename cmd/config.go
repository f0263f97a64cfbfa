package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ptai/internal/config"
)

// newConfigCmd shows or writes the effective configuration. It only reads
// settings, so it skips the dataset setup done for the other commands.
func newConfigCmd(load func() (*config.Config, error)) *cobra.Command {
	var cfg *config.Config
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the effective configuration",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = load()
			return err
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the configuration after defaults, ptai.yaml, environment and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the configuration to a new ptai.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "ptai.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})
	return cmd
}
