package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"survey-service/internal/app"
	"survey-service/internal/config"
	transport "survey-service/internal/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Seed the catalog if needed and start the survey server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	policy, err := app.ParseProgressPolicy(cfg.Survey.ProgressPolicy)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "5000"
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	log.Printf("using %s storage, %s progress policy", b.name, policy)

	catalog := app.NewCatalog(b.catalog)
	// The catalog must be complete before the listener accepts traffic.
	if _, err := loadCatalog(ctx, catalog, cfg.Survey.Questions); err != nil {
		return err
	}

	tokens := app.NewTokenStore(b.tokens)
	responses := app.NewResponseLog(b.responses)
	progress := app.NewProgressCalculator(catalog, responses, policy)
	service := app.NewSurveyService(tokens, catalog, responses, progress, app.Options{
		RestrictResponses: cfg.Survey.RestrictResponses,
	})

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("starting survey service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		log.Printf("failed to start server: %v", err)
		return fmt.Errorf("listen on :%s: %w", finalPort, err)
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
