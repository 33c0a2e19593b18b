package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	chronosgrpc "github.com/blockberries/chronos/grpc"
	"github.com/blockberries/chronos/server"
)

func (a *app) serveCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local clock over gRPC",
		Long:  "Serve the local clock on --listen, the configured server.listen address if empty, until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = a.cfg.Server.Listen
			}
			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}

			log := a.log.With().Str("addr", lis.Addr().String()).Logger()
			srv := server.New(nil, server.WithConfig(*a.cfg), server.WithLogger(log))
			gs := chronosgrpc.NewGRPCServer(srv, log)
			g := gs.NewServer()

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				log.Info().Msg("shutting down")
				gs.Stop(g)
			}()

			fmt.Fprintln(cmd.OutOrStdout(), "listening on", lis.Addr())
			log.Info().Msg("serving")
			return g.Serve(lis)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", `address to listen on, "host:port"`)
	return cmd
}
