package cli

import (
	"context"
	"fmt"
	"log"

	"survey-service/internal/app"
	"survey-service/internal/config"
	"survey-service/internal/infra/file"

	"github.com/spf13/cobra"
)

// NewSeedCmd loads the question catalog into the configured store if it is empty.
func NewSeedCmd(configPath *string) *cobra.Command {
	var questionsPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load survey questions into an empty catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, questionsPath)
		},
	}
	cmd.Flags().StringVar(&questionsPath, "questions", "", "question definitions file (overrides survey.questions)")
	return cmd
}

func runSeed(ctx context.Context, configPath, questionsPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if questionsPath != "" {
		cfg.Survey.Questions = questionsPath
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	if !b.persistent {
		return fmt.Errorf("seed needs postgres.url or sqlite.path; the in-memory catalog is seeded by start")
	}

	_, err = loadCatalog(ctx, app.NewCatalog(b.catalog), cfg.Survey.Questions)
	return err
}

func loadCatalog(ctx context.Context, catalog *app.Catalog, path string) (int, error) {
	inserted, err := catalog.LoadIfEmpty(ctx, file.NewQuestionSource(path))
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		log.Printf("loaded %d questions from %s", inserted, path)
		return inserted, nil
	}
	count, err := catalog.Count(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("found %d existing questions, skipping initialization", count)
	return 0, nil
}
