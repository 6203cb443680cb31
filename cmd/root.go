package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ValentinKolb/credis/cmd/kv"
	"github.com/ValentinKolb/credis/cmd/lock"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "credis",
		Short: "sentinel-aware, namespaced Redis client",
		Long: fmt.Sprintf(`credis (v%s)

A Redis access layer for deployments supervised by Sentinel. Writes go to
the current primary, reads to a replica, every key lives in a tenant
namespace and values are encoded transparently.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of credis",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("credis v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
