package kv

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/credis/lib/client"
	"github.com/spf13/cobra"
)

var (
	setTTL time.Duration
	setNX  bool
	setXX  bool

	incrBy int64

	flushAsync bool

	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if setNX && setXX {
				return fmt.Errorf("--nx and --xx are mutually exclusive")
			}
			opts := client.SetOptions{TTL: setTTL}
			switch {
			case setNX:
				opts.Mode = client.SetNX
			case setXX:
				opts.Mode = client.SetXX
			}

			ok, err := kvClient.Set(cmd.Context(), args[0], args[1], opts)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, written=%t\n", args[0], ok)
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := kvClient.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t, value=%v\n", args[0], value != nil, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]...",
		Short: "Deletes keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := kvClient.Delete(cmd.Context(), toAny(args)...)
			if err != nil {
				return err
			}
			fmt.Printf("deleted=%d\n", n)
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [key]...",
		Short: "Counts how many of the keys exist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := kvClient.Exists(cmd.Context(), toAny(args)...)
			if err != nil {
				return err
			}
			fmt.Printf("exists=%d\n", n)
			return nil
		},
	}
	ttlCmd = &cobra.Command{
		Use:   "ttl [key]",
		Short: "Prints the remaining time to live of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := kvClient.TTL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch ttl {
			case -2:
				fmt.Printf("key=%s, found=false\n", args[0])
			case -1:
				fmt.Printf("key=%s, ttl=none\n", args[0])
			default:
				fmt.Printf("key=%s, ttl=%s\n", args[0], ttl)
			}
			return nil
		},
	}
	expireCmd = &cobra.Command{
		Use:   "expire [key] [ttl]",
		Short: "Sets a time to live on a key (e.g. 30s, 5m)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("ttl must be a duration: %w", err)
			}
			ok, err := kvClient.Expire(cmd.Context(), args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", args[0], ok)
			return nil
		},
	}
	persistCmd = &cobra.Command{
		Use:   "persist [key]",
		Short: "Removes the time to live of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := kvClient.Persist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, persisted=%t\n", args[0], ok)
			return nil
		},
	}
	incrCmd = &cobra.Command{
		Use:   "incr [key]",
		Short: "Increments the integer counter stored at key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := kvClient.Incr(cmd.Context(), args[0], incrBy)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, value=%d\n", args[0], n)
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "Lists the keys of the namespace matching pattern (default *)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			match := "*"
			if len(args) == 1 {
				match = args[0]
			}

			iter := kvClient.ScanIter(cmd.Context(), client.ScanOptions{Match: match, Count: 100})
			for key, ok := iter.Next(); ok; key, ok = iter.Next() {
				if raw, ok := kvClient.Namespace().Strip(key); ok {
					fmt.Println(raw)
				}
			}
			return iter.Close()
		},
	}
	typeCmd = &cobra.Command{
		Use:   "type [key]",
		Short: "Prints the store type of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := kvClient.Type(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, type=%s\n", args[0], typ)
			return nil
		},
	}
	renameCmd = &cobra.Command{
		Use:   "rename [key] [new-key]",
		Short: "Renames a key within the namespace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvClient.Rename(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("renamed successfully")
			return nil
		},
	}
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks the connection and prints the discovered topology",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := kvClient.Ping(cmd.Context()); err != nil {
				return err
			}
			info := kvClient.Topology().Info()
			fmt.Printf("state=%s, primary=%s, replicas=%v\n", info.State, info.PrimaryAddr, info.ReplicaAddrs)
			return nil
		},
	}
	flushDBCmd = &cobra.Command{
		Use:   "flushdb",
		Short: "Deletes all keys of the current database (not only the namespace!)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := kvClient.FlushDB(cmd.Context(), flushAsync); err != nil {
				return err
			}
			fmt.Println("flushed successfully")
			return nil
		},
	}
)

func init() {
	setCmd.Flags().DurationVar(&setTTL, "ttl", 0, "Time to live of the key (0 for none)")
	setCmd.Flags().BoolVar(&setNX, "nx", false, "Only set the key if it does not exist")
	setCmd.Flags().BoolVar(&setXX, "xx", false, "Only set the key if it already exists")
	incrCmd.Flags().Int64Var(&incrBy, "by", 1, "Amount to increment by (negative to decrement)")
	flushDBCmd.Flags().BoolVar(&flushAsync, "async", false, "Flush in the background")
}

// toAny converts command arguments to facade keys
func toAny(args []string) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}
