package util

import (
	"context"
	"strings"
	"time"

	"github.com/ValentinKolb/credis/lib/client"
	"github.com/ValentinKolb/credis/lib/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the common connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	defaults := client.DefaultConfig()

	key := "host"
	cmd.PersistentFlags().String(key, defaults.Host, WrapString("Host of the Sentinel monitor"))

	key = "port"
	cmd.PersistentFlags().Int(key, defaults.Port, WrapString("Port of the Sentinel monitor"))

	key = "prefix"
	cmd.PersistentFlags().String(key, "credis", WrapString("Namespace prefix prepended to every key (<prefix>:<key>)"))

	key = "password"
	cmd.PersistentFlags().String(key, "", WrapString("Password for the monitor and the data nodes (optional)"))

	key = "socket-timeout"
	cmd.PersistentFlags().Duration(key, defaults.SocketTimeout, WrapString("Connect, read and write timeout of every connection"))

	key = "master-name"
	cmd.PersistentFlags().String(key, defaults.MasterName, WrapString("Name of the monitored primary set"))

	key = "codec"
	cmd.PersistentFlags().String(key, defaults.Codec, WrapString("Value codec (binary, gob, json)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, defaults.LogLevel, WrapString("Log level (debug, info, warn, error)"))

	key = "lazy"
	cmd.PersistentFlags().Bool(key, false, WrapString("Connect on the first operation instead of at startup"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print the command metrics in Prometheus format after the command"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("credis")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads the client configuration from viper
func GetClientConfig() client.Config {
	return client.Config{
		Host:          viper.GetString("host"),
		Port:          viper.GetInt("port"),
		Prefix:        viper.GetString("prefix"),
		Password:      viper.GetString("password"),
		SocketTimeout: viper.GetDuration("socket-timeout"),
		MasterName:    viper.GetString("master-name"),
		Codec:         viper.GetString("codec"),
		LogLevel:      viper.GetString("log-level"),
	}
}

// NewClient initializes the loggers and creates the client configured by
// viper. With --lazy no connection is made until the first operation.
func NewClient(ctx context.Context, opts ...client.Option) (*client.Client, error) {
	conf := GetClientConfig()
	if err := common.InitLoggers(conf.LogLevel); err != nil {
		return nil, err
	}

	if viper.GetBool("lazy") {
		return client.NewLazy(conf, opts...)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout(conf))
	defer cancel()
	return client.New(ctx, conf, opts...)
}

// connectTimeout bounds the eager connect: monitor, discovery and both role
// connections each get one socket timeout
func connectTimeout(conf client.Config) time.Duration {
	return 4 * conf.SocketTimeout
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
