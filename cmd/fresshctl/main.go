// Command fresshctl inspects and edits a fressh vault from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/EthanShoeDev/fressh-sub000"
	"github.com/EthanShoeDev/fressh-sub000/codec"
	"github.com/EthanShoeDev/fressh-sub000/internal/chunk"
	"github.com/EthanShoeDev/fressh-sub000/resource"
)

// app carries the state shared by every subcommand.
type app struct {
	cfg   *Config
	vault *fressh.Vault
}

func newRootCmd(a *app) *cobra.Command {
	var backend, path string

	root := &cobra.Command{
		Use:           "fresshctl",
		Short:         "Inspect and edit a fressh key and connection vault",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.Backend = backend
			}
			if path != "" {
				cfg.Path = path
			}
			a.cfg = cfg
			return a.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&backend, "backend", "", "backing store (overrides FRESSH_BACKEND)")
	root.PersistentFlags().StringVar(&path, "path", "", "data directory for file backends (overrides FRESSH_PATH)")

	root.AddCommand(
		newKeysCmd(a),
		newConnectionsCmd(a),
		newManifestCmd(a),
		newSweepCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	level, err := a.cfg.level()
	if err != nil {
		return err
	}
	compression, err := chunk.ParseCompression(a.cfg.Compression)
	if err != nil {
		return fmt.Errorf("FRESSH_COMPRESSION: %w", err)
	}

	var opts []fressh.Option
	if a.cfg.Codec != "" {
		c, ok := codec.ByName(a.cfg.Codec)
		if !ok {
			return fmt.Errorf("FRESSH_CODEC: unknown codec %q (one of %v)", a.cfg.Codec, codec.Names())
		}
		opts = append(opts, fressh.WithCodec(c))
	}

	store, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}

	opts = append(opts,
		fressh.WithLimits(a.cfg.MaxValueSize, a.cfg.SliceSize),
		fressh.WithCompression(compression),
		fressh.WithLogger(fressh.NewTextLogger(level)),
	)
	if a.cfg.CallsPerSecond > 0 {
		opts = append(opts, fressh.WithResourceController(resource.NewController(resource.Config{
			CallsPerSecond: a.cfg.CallsPerSecond,
		})))
	}

	v, err := fressh.Open(store, opts...)
	if err != nil {
		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
		return err
	}
	a.vault = v
	return nil
}

// close releases the vault opened by the command, if any.
func (a *app) close() error {
	if a.vault == nil {
		return nil
	}
	err := a.vault.Close()
	a.vault = nil
	return err
}

// run executes args and always releases the backing store.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("✗"), err)
		stop()
		os.Exit(1)
	}
}
