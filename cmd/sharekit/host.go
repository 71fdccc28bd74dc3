package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/sharekit/internal/handoff"
	"go.klb.dev/sharekit/internal/host"
	"go.klb.dev/sharekit/internal/ipc"
	"go.klb.dev/sharekit/internal/item"
	"go.klb.dev/sharekit/internal/logging"
	"go.klb.dev/sharekit/internal/wake"
)

func newHostCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "host",
		Short: "Receive handoffs for a host application",
		Long: `Listens for wake signals addressed to the host and prints every
published batch as one JSON line on stdout.

With --once the pending batch is printed immediately and the command exits.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHost(cmd.Context(), v, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("host", hostFromBundle(defaultBundleID), "host identity to receive for")
	f.Bool("once", false, "print the pending batch and exit")
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func hostFromBundle(bundleID string) string {
	h, _ := handoff.HostIdentity(bundleID)
	return h
}

func runHost(ctx context.Context, v *viper.Viper, stdout io.Writer) error {
	setupLogging(v)

	name := v.GetString("host")
	if name == "" {
		return fmt.Errorf("--host is required")
	}

	st, key, closeStore, err := openStore(v)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	r := host.New(name, st, key, slog.Default())
	enc := json.NewEncoder(stdout)
	emit := func(ctx context.Context, items []item.Item) {
		logging.Items(slog.Default(), "batch received", items)
		if items == nil {
			items = []item.Item{}
		}
		if err := enc.Encode(items); err != nil {
			slog.Error("write batch", "err", err)
		}
	}

	if v.GetBool("once") {
		items, err := r.Fetch(ctx)
		if err != nil {
			return err
		}
		emit(ctx, items)
		return nil
	}

	// Listen replaces the socket file, so a live host must be detected first.
	if ipc.IsRunning(name) {
		return fmt.Errorf("a host for %s is already listening on %s", name, ipc.SocketPath(name))
	}
	ln, err := ipc.Listen(name)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	slog.Info("sharekit host listening",
		"version", Version,
		"host", name,
		"socket", ipc.SocketPath(name),
		"uri", wake.URI(name),
		"sealed", key != nil,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := r.Serve(ctx, ln, emit); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
