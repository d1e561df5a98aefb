// File: cmd/hioload-exec/root.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-exec/control"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "hioload-exec",
		Short: "Service executor workbench",
		Long: `hioload-exec runs simulated client sessions through a synchronous or
fixed-size pooled executor. Session data arrives from a reactor; every
continuation is dispatched with RunOnDataAvailable.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config-file", "", "YAML config file")
	control.BindFlags(root.PersistentFlags())

	load := func(cmd *cobra.Command) (*control.Config, *viper.Viper, error) {
		return control.Load(cfgFile, cmd.Flags())
	}

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the session simulation and print executor stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, v, err := load(cmd)
			if err != nil {
				return err
			}
			return runSimulation(cmd.Context(), cfg, v, cmd.OutOrStdout())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load(cmd)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	return root
}
