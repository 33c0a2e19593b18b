package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/chronos"
	"github.com/blockberries/chronos/config"
	chronosgrpc "github.com/blockberries/chronos/grpc"
	"github.com/blockberries/chronos/local"
	"github.com/blockberries/chronos/logsink"
	"github.com/blockberries/chronos/server"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	stdout, stderr io.Writer

	configPath string
	remote     string
	logLevel   string

	cfg  *config.Config
	log  *logsink.Logger
	conn chronos.Connection
}

// run executes the command line args and releases whatever the command
// opened.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.teardown())
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          path.Base(os.Args[0]),
		Short:        "Extended-range time values",
		Long:         "Read the clock, format and parse timestamps, and do saturating duration arithmetic.",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file, $"+config.ConfigEnv+" if empty")
	flags.StringVar(&a.remote, "remote", "", "address of a chronos server to use instead of the local clock")
	flags.StringVar(&a.logLevel, "log-level", "", "log verbosity: NONE, FATAL, ERROR, WARNING, INFO, DEBUG or TRACE")
	config.AddFlags(flags)

	root.AddCommand(
		a.nowCommand(),
		a.formatCommand(),
		a.parseCommand(),
		a.durationCommand(),
		a.ticksCommand(),
		a.serveCommand(),
	)
	return root
}

func (a *app) setup() error {
	config.ApplyFlags()
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		v, err := logsink.ParseVerbosity(a.logLevel)
		if err != nil {
			return err
		}
		cfg.Log.Verbosity = v
	}
	if a.remote != "" {
		cfg.Server.Dial = a.remote
	}
	a.cfg = cfg
	a.log = logsink.NewLogger(cfg.Log.Options(a.stdout, a.stderr), "chronos")
	return nil
}

func (a *app) teardown() error {
	var ee []error
	if a.conn != nil {
		ee = append(ee, a.conn.Close())
		a.conn = nil
	}
	if a.log != nil {
		ee = append(ee, a.log.Close())
		a.log = nil
	}
	return errors.Join(ee...)
}

// connect opens the local clock, or the remote server when one is
// configured.
func (a *app) connect(ctx context.Context) (chronos.Connection, error) {
	if a.conn != nil {
		return a.conn, nil
	}
	if a.cfg.Server.Dial == "" {
		a.conn = local.NewConnection(nil,
			server.WithConfig(*a.cfg),
			server.WithLogger(a.log.Logger),
		)
		return a.conn, nil
	}

	if timeout, err := a.cfg.Server.DialTimeout.ToGo(); err == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	client, err := chronosgrpc.Dial(ctx, a.cfg.Server.Dial,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("addr", a.cfg.Server.Dial).Msg("connected to remote clock")
	a.conn = client
	return a.conn, nil
}
