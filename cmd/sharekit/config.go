package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/sharekit/internal/crypto"
	"go.klb.dev/sharekit/internal/logging"
	"go.klb.dev/sharekit/internal/store"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and SHAREKIT_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → SHAREKIT_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("sharekit")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/sharekit/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/sharekit", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("SHAREKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info, debug when interactive)")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addStoreFlags adds the flags shared by both ends of a handoff.
func addStoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("group-root", defaultGroupRoot(), "directory holding the per-host group containers")
	f.String("store", "file", "shared store backend: file|redis")
	f.String("redis-addr", "localhost:6379", "redis address when --store=redis")
	f.String("redis-prefix", "sharekit:", "key prefix when --store=redis")
	f.String("token", "", "shared secret sealing the store and wake frames (empty = plaintext)")
}

// setupLogging reads logging flags from viper and configures slog.
func setupLogging(v *viper.Viper) {
	interactive := v.GetBool("no-background") || logging.IsTTY(os.Stderr)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
}

func defaultGroupRoot() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "sharekit", "groups")
	}
	return filepath.Join(os.TempDir(), "sharekit", "groups")
}

// openStore builds the configured shared store, sealed when a token is set.
// The returned close func releases any connection.
func openStore(v *viper.Viper) (store.Store, *crypto.Key, func() error, error) {
	key, err := crypto.DeriveKey(v.GetString("token"))
	if err != nil {
		return nil, nil, nil, err
	}

	switch backend := v.GetString("store"); backend {
	case "file", "":
		s := store.NewFileStore(afero.NewOsFs(), v.GetString("group-root"))
		return store.Seal(s, key), key, func() error { return nil }, nil
	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{v.GetString("redis-addr")},
		})
		s, err := store.NewRedisStore(client, v.GetString("redis-prefix"))
		if err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		return store.Seal(s, key), key, client.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q (want file or redis)", backend)
	}
}

func getenv(key string) string  { return os.Getenv(key) }
func hostname() (string, error) { return os.Hostname() }

func isContainerID(s string) bool {
	if len(s) < 12 || len(s) > 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

// defaultSource returns a human-readable identifier for this host, used to
// name the sender in wake frames.
func defaultSource() string {
	for _, env := range []string{
		"SHAREKIT_SOURCE",
		"CONTAINER_NAME",
		"COMPOSE_SERVICE",
		"SERVICE_NAME",
	} {
		if v := getenv(env); v != "" {
			return v
		}
	}
	h, err := hostname()
	if err != nil {
		return "unknown"
	}
	if isContainerID(h) {
		return "container-" + h[:8]
	}
	return h
}
