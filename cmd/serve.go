package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/david-wiggs/jenkins-passthrough/internal/api"
	"github.com/david-wiggs/jenkins-passthrough/internal/audit"
	"github.com/david-wiggs/jenkins-passthrough/internal/authn"
	"github.com/david-wiggs/jenkins-passthrough/internal/config"
	"github.com/david-wiggs/jenkins-passthrough/internal/core"
	"github.com/david-wiggs/jenkins-passthrough/internal/directory"
	"github.com/david-wiggs/jenkins-passthrough/internal/engine"
	"github.com/david-wiggs/jenkins-passthrough/internal/ghapp"
	"github.com/david-wiggs/jenkins-passthrough/internal/service"
	"github.com/david-wiggs/jenkins-passthrough/internal/store"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the credential validation server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		eng, err := engine.New(engine.Config{
			GroupPattern:           cfg.Authz.GroupPattern,
			TeamPattern:            cfg.Authz.TeamPattern,
			MatchExpr:              cfg.Authz.MatchExpr,
			DisableNameContainment: cfg.Authz.DisableNameContainment,
		})
		if err != nil {
			return fmt.Errorf("building decision engine: %w", err)
		}

		dir := directory.NewClient(cfg.Identity.BaseURL)

		log.Info().Str("strategy", cfg.Identity.Strategy).Msg("Initializing authenticator...")
		authenticator, err := authn.Build(cmd.Context(), cfg.Identity, dir, cfg.Development())
		if err != nil {
			return fmt.Errorf("building authenticator: %w", err)
		}

		teams, issuer, err := buildGitHub(cfg)
		if err != nil {
			return fmt.Errorf("building github app client: %w", err)
		}

		auditor, err := buildAuditor(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close auditor")
			}
		}()

		tokenStore := store.NewInMemoryTokenStore()

		svc := service.NewValidationService(
			authenticator, dir, teams, issuer, eng, auditor, tokenStore, cfg.GitHub.Organization)

		srv := api.NewServer(svc, auditor, tokenStore)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes([]byte(cfg.Server.AdminSigningKey), cfg.Server.CORSOrigins),
		}

		sweepCtx, stopSweep := context.WithCancel(cmd.Context())
		defer stopSweep()
		go sweepExpiredTokens(sweepCtx, tokenStore)

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

// buildGitHub returns the team resolver and token issuer. Development mode
// without app credentials gets the stub so the rest of the pipeline stays
// testable.
func buildGitHub(cfg *config.Config) (core.TeamResolver, core.TokenIssuer, error) {
	if cfg.Development() && cfg.GitHub.AppID == 0 {
		log.Warn().Msg("no GitHub App configured, using stub resolver and issuer")
		stub := ghapp.NewStub(nil)
		return stub, stub, nil
	}
	app, err := ghapp.New(cfg.GitHub)
	if err != nil {
		return nil, nil, err
	}
	return app, app, nil
}

func buildAuditor(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return audit.NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "file":
		return audit.NewFileAuditor(cfg.Path)
	case "", "memory":
		return audit.NewInMemoryAuditor(), nil
	case "noop":
		return audit.NewNoopAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", cfg.Type)
	}
}

// sweepExpiredTokens drops expired token metadata periodically so the active
// list stays bounded.
func sweepExpiredTokens(ctx context.Context, tokenStore *store.InMemoryTokenStore) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := tokenStore.DeleteExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("failed to sweep expired tokens")
				continue
			}
			if deleted > 0 {
				log.Debug().Int64("deleted", deleted).Msg("swept expired token metadata")
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (overrides config)")
}
