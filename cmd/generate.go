package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sota-ai/sotanews/internal/config"
	"github.com/sota-ai/sotanews/internal/logging"
)

var (
	flagDate  string
	flagForce bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a digest once and print it",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&flagDate, "date", "", "digest date (YYYY-MM-DD, default today)")
	generateCmd.Flags().BoolVar(&flagForce, "force", false, "regenerate even if a digest exists")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New("warn", cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	generator, _, _ := buildGenerator(cfg, nil, nil, logger)

	digest, err := generator.Generate(context.Background(), flagDate, flagForce)
	if err != nil {
		return fmt.Errorf("generating digest: %w", err)
	}

	fmt.Println(digest.Content)
	return nil
}
