package kv

import (
	"os"

	"github.com/ValentinKolb/credis/cmd/util"
	"github.com/ValentinKolb/credis/lib/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	kvClient *client.Client

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value operations",
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: closeKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the KV command
	util.SetupClientFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(existsCmd)
	KeyValueCommands.AddCommand(ttlCmd)
	KeyValueCommands.AddCommand(expireCmd)
	KeyValueCommands.AddCommand(persistCmd)
	KeyValueCommands.AddCommand(incrCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(typeCmd)
	KeyValueCommands.AddCommand(renameCmd)
	KeyValueCommands.AddCommand(pingCmd)
	KeyValueCommands.AddCommand(flushDBCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient initializes the client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	kvClient, err = util.NewClient(cmd.Context())
	return err
}

// closeKVClient prints the metrics if requested and releases the connections
func closeKVClient(_ *cobra.Command, _ []string) error {
	if kvClient == nil {
		return nil
	}
	if viper.GetBool("metrics") {
		kvClient.Metrics().WritePrometheus(os.Stdout)
	}
	return kvClient.Close()
}
