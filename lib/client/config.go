package client

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/credis/lib/codec"
	"github.com/ValentinKolb/credis/lib/common"
	"github.com/ValentinKolb/credis/lib/topology"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// Config holds all construction parameters of a Client.
type Config struct {
	// Host and Port of the monitor (sentinel) node
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Prefix is the tenant namespace prepended to every key
	Prefix string `mapstructure:"prefix"`

	// Password is the optional credential for the monitor and the store nodes
	Password string `mapstructure:"password"`

	// SocketTimeout bounds dialing, reading and writing on every connection
	SocketTimeout time.Duration `mapstructure:"socket-timeout"`

	// MasterName is the name of the monitored primary set
	MasterName string `mapstructure:"master-name"`

	// Codec selects the value codec by name (see codec.Names)
	Codec string `mapstructure:"codec"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `mapstructure:"log-level"`
}

// DefaultConfig returns a Config with all optional fields set to their defaults
func DefaultConfig() Config {
	return Config{
		Host:          "localhost",
		Port:          26379,
		SocketTimeout: 500 * time.Millisecond,
		MasterName:    "mymaster",
		Codec:         "gob",
		LogLevel:      "info",
	}
}

// Validate checks the config for missing or invalid values
func (c Config) Validate() error {
	if err := c.Topology().Validate(); err != nil {
		return err
	}
	if c.Prefix == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	if c.Codec != "" {
		if _, err := codec.New(c.Codec); err != nil {
			return err
		}
	}
	if c.LogLevel != "" {
		if _, err := common.ParseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Topology returns the topology part of the config
func (c Config) Topology() topology.Config {
	return topology.Config{
		Host:           c.Host,
		Port:           c.Port,
		Password:       c.Password,
		SocketTimeout:  c.SocketTimeout,
		MonitorSetName: c.MasterName,
	}
}

// String returns a formatted string representation of the configuration.
// The password is never printed.
func (c Config) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Sentinel")
	addField("Host", c.Host)
	addField("Port", strconv.Itoa(c.Port))
	addField("Master Name", c.MasterName)
	addField("Password", maskPassword(c.Password))
	addField("Socket Timeout", c.SocketTimeout.String())

	addSection("Client")
	addField("Prefix", c.Prefix)
	addField("Codec", c.Codec)

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

func maskPassword(password string) string {
	if password == "" {
		return "<none>"
	}
	return "********"
}
