package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthlens/internal/history"
	"github.com/ppiankov/truthlens/internal/pipeline"
	"github.com/ppiankov/truthlens/internal/server"
)

var (
	serveAddr      string
	serveNoHistory bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes claim resolution over HTTP:
  GET    /              usage
  GET    /health        liveness
  POST   /analyze       {"text": "..."} → resolution outcome
  GET    /history       stored outcomes, newest first (?limit=)
  DELETE /history       delete every stored outcome
  GET    /history/:id   one stored outcome
  DELETE /history/:id   delete a stored outcome
  GET    /metrics       Prometheus metrics

Example:
  truthlens serve
  truthlens serve --addr 127.0.0.1:9090 --no-history`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "do not store outcomes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger := newLogger(cfg)

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	checkCtx, cancelCheck := context.WithTimeout(context.Background(), 5*time.Second)
	if err := p.CheckEnrichment(checkCtx); err != nil {
		logger.Warn("enrichment provider check failed; outcomes will carry enrichment_error", "error", err)
	}
	cancelCheck()

	var srv *server.Server
	if serveNoHistory || cfg.History.Path == "" {
		srv = server.New(cfg.Server, p, nil, logger)
	} else {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer func() { _ = store.Close() }()
		srv = server.New(cfg.Server, p, store, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
