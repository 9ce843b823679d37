package main

import (
	"fmt"
	"os"

	"tombola/cmd"
	"tombola/config"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tombola",
		Short: "Tombola raffle service",
		Long: `Tombola runs paid-entry raffles: admins open raffles, users submit
mobile-money payment claims, admins validate them, and one winner is drawn
among validated entries after the end date.`,
		SilenceUsage: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			// migrate reads DATABASE_URL on its own and must run before the rest of the config is set
			if c.HasParent() && c.Parent().Name() == "migrate" {
				return
			}
			cmd.ConfigureLogging(config.Get())
		},
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Serve()
		},
	}

	rootCmd.AddCommand(cmd.ServeCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.RaffleCmd())
	rootCmd.AddCommand(cmd.UserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
