package util

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("Line exceeds %d characters: %q", Wrap, line)
		}
	}
	if got := WrapString("  short   text "); got != "short text" {
		t.Errorf("Expected whitespace to be collapsed, got %q", got)
	}
}

func TestClientConfigFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("CREDIS_MASTER_NAME", "cache")
	t.Setenv("CREDIS_SOCKET_TIMEOUT", "2s")
	InitClientConfig()

	cmd := &cobra.Command{Use: "test"}
	SetupClientFlags(cmd)
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		t.Fatalf("Failed to bind flags: %v", err)
	}
	if err := cmd.PersistentFlags().Set("prefix", "tenant"); err != nil {
		t.Fatalf("Failed to set flag: %v", err)
	}

	conf := GetClientConfig()
	if conf.MasterName != "cache" {
		t.Errorf("Expected master name from env, got %q", conf.MasterName)
	}
	if conf.SocketTimeout != 2*time.Second {
		t.Errorf("Expected socket timeout from env, got %v", conf.SocketTimeout)
	}
	if conf.Prefix != "tenant" {
		t.Errorf("Expected prefix from flag, got %q", conf.Prefix)
	}
	if conf.Port != 26379 || conf.Codec != "gob" {
		t.Errorf("Expected defaults for port and codec, got %d %q", conf.Port, conf.Codec)
	}
	if err := conf.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}
