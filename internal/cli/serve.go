package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsmart/internal/auth"
	"github.com/mmynk/splitsmart/internal/server"
	"github.com/mmynk/splitsmart/internal/service"
	"github.com/mmynk/splitsmart/internal/storage"
)

func (a *app) serveCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over connect RPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}

			opts := server.Options{
				Currency:    a.cfg.Display.Currency,
				RequireAuth: a.cfg.Auth.Required,
				Metrics:     a.metrics,
			}
			if a.cfg.Auth.Secret != "" {
				opts.JWT = auth.NewJWTManager(a.cfg.Auth.Secret, a.cfg.Auth.TokenTTL)
			}
			slog.Info("Server configured",
				"port", a.cfg.Server.Port,
				"auth", opts.JWT != nil,
				"auth_required", opts.RequireAuth,
			)

			addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
			return server.Run(cmd.Context(), addr, server.New(a.svc, opts))
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

func (a *app) tokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token USER",
		Short: "Issue a bearer token for a registered user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Auth.Secret == "" {
				return errors.New("auth.secret is not configured")
			}
			user, err := a.store.GetUser(cmd.Context(), args[0])
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: %s", service.ErrUserNotFound, args[0])
			}
			if err != nil {
				return err
			}
			token, err := auth.NewJWTManager(a.cfg.Auth.Secret, a.cfg.Auth.TokenTTL).Generate(user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
