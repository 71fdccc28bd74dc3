package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/sharekit/internal/classify"
	"go.klb.dev/sharekit/internal/clip"
	"go.klb.dev/sharekit/internal/container"
	"go.klb.dev/sharekit/internal/handoff"
	"go.klb.dev/sharekit/internal/loader"
	"go.klb.dev/sharekit/internal/logging"
	"go.klb.dev/sharekit/internal/normalize"
	"go.klb.dev/sharekit/internal/pipeline"
	"go.klb.dev/sharekit/internal/shareerr"
	"go.klb.dev/sharekit/internal/thumbnail"
	"go.klb.dev/sharekit/internal/wake"
)

const defaultBundleID = "dev.klb.sharekit.Share"

func newShareCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "share [path|url|text]...",
		Short: "Share attachments with the host application",
		Long: `Classifies each argument and hands the batch off to the host.

Existing files are detected by content (image, video or generic file) and
copied into the host's group container. http(s) URLs are shared as links.
Anything else, and every --message, is plain text; text is only shared when
--text is enabled. --clipboard adds the current clipboard contents.

Attachments that cannot be classified are logged and skipped. The batch is
published even if it ends up empty. A failed handoff is logged; the command
still exits 0.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShare(cmd.Context(), v, args, cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.String("bundle-id", defaultBundleID, "bundle identifier of this extension; the host is its parent")
	f.StringArrayP("message", "m", nil, "text attachment (repeatable)")
	f.Bool("clipboard", false, "also share the current clipboard contents")
	f.Bool("text", false, "classify plain text attachments (otherwise unsupported)")
	f.String("ffmpeg", "", "ffmpeg binary used for video previews (default: from $PATH)")
	f.String("ffprobe", "", "ffprobe binary used for video durations (default: from $PATH)")
	f.String("source", defaultSource(), "name for this sender in wake frames")
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runShare(ctx context.Context, v *viper.Viper, args []string, stderr io.Writer) error {
	setupLogging(v)
	log := slog.Default()

	spill, err := os.MkdirTemp("", "sharekit-clip")
	if err != nil {
		return err
	}
	defer os.RemoveAll(spill)

	descriptors := describe(v, args, spill, log)
	if len(descriptors) == 0 {
		log.Error("error loading data", "reason", "no attachments")
		fmt.Fprintln(stderr, "Error loading data")
		return nil
	}

	bundleID := v.GetString("bundle-id")
	host, err := handoff.HostIdentity(bundleID)
	if err != nil {
		log.Error("handoff failed", "code", shareerr.Code(err), "err", err)
		return nil
	}

	dir, err := container.Open(filepath.Join(v.GetString("group-root"), handoff.Group(host)))
	if err != nil {
		return err
	}
	unlock, err := dir.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	st, key, closeStore, err := openStore(v)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	media := thumbnail.FFmpeg{FFmpegPath: v.GetString("ffmpeg"), FFprobePath: v.GetString("ffprobe")}
	norm := normalize.New(dir, thumbnail.New(media, dir, log), log)
	policy := classify.DefaultPolicy
	if v.GetBool("text") {
		policy = policy.WithText()
	}
	cls := classify.New(loader.Local{}, norm, policy, log)

	log.Info("sharing", "version", Version, "host", host, "attachments", len(descriptors),
		"container", dir.Path(), "store", v.GetString("store"), "sealed", key != nil)

	items := pipeline.Run(ctx, cls, descriptors, log)
	logging.Items(log, "batch ready", items)

	sig := &wake.IPC{Source: v.GetString("source"), Key: key, Log: log}
	done := handoff.CompleterFunc(func(context.Context) { log.Debug("share complete") })
	handoff.New(bundleID, st, sig, done, log).Publish(ctx, items)
	return nil
}

// describe collects descriptors from arguments, --message values and,
// when asked, the clipboard, in that order.
func describe(v *viper.Viper, args []string, spill string, log *slog.Logger) []loader.Descriptor {
	var out []loader.Descriptor
	for _, arg := range args {
		d, err := loader.Describe(arg)
		if err != nil {
			log.Warn("skipping argument", "arg", arg, "err", err)
			continue
		}
		out = append(out, d)
	}
	for _, m := range v.GetStringSlice("message") {
		out = append(out, loader.DescribeText(m))
	}
	if v.GetBool("clipboard") {
		backend := clip.New()
		ds, err := loader.FromClipboard(backend, spill)
		if err != nil {
			log.Warn("clipboard unavailable", "backend", backend.Name(), "err", err)
		}
		out = append(out, ds...)
	}
	return out
}
