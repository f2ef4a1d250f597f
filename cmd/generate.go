package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/blueprint"
	"github.com/ziadkadry99/instasite/internal/export"
	"github.com/ziadkadry99/instasite/internal/generator"
	"github.com/ziadkadry99/instasite/internal/ledger"
	"github.com/ziadkadry99/instasite/internal/logging"
	"github.com/ziadkadry99/instasite/internal/progress"
	"github.com/ziadkadry99/instasite/internal/sandbox"
	"github.com/ziadkadry99/instasite/internal/session"
)

var (
	genGoal      string
	genAudience  string
	genType      string
	genPages     []string
	genColors    []string
	genTone      string
	genOutputDir string
	genHomeOnly  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a website without the editor and export it",
	Long: `Plans a website from the given brief, generates its pages and writes
blueprint.json, sitemap.md and one self-contained HTML preview per page to the
output directory.

The home page must generate for the run to succeed. Other pages that fail are
reported and left out of the export.`,
	RunE: runGenerate,
}

func init() {
	defaults := session.DefaultParams()
	generateCmd.Flags().StringVar(&genGoal, "goal", "", "What the website should achieve (required)")
	generateCmd.Flags().StringVar(&genAudience, "audience", "", "Who the website is for (required)")
	generateCmd.Flags().StringVar(&genType, "type", defaults.Type, "Kind of website")
	generateCmd.Flags().StringSliceVar(&genPages, "pages", defaults.Pages, "Page slugs to include")
	generateCmd.Flags().StringSliceVar(&genColors, "colors", defaults.Colors, "Brand colors as hex values")
	generateCmd.Flags().StringVar(&genTone, "tone", defaults.Tone, "Brand tone")
	generateCmd.Flags().StringVarP(&genOutputDir, "output", "o", "", "Output directory (defaults to output_dir from config)")
	generateCmd.Flags().BoolVar(&genHomeOnly, "home-only", false, "Generate only the home page")
	generateCmd.MarkFlagRequired("goal")
	generateCmd.MarkFlagRequired("audience")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	outputDir := genOutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	database, usage, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	gen, err := createGeneratorFromConfig(cfg, usage)
	if err != nil {
		return err
	}
	renderer, err := sandbox.NewRenderer()
	if err != nil {
		return err
	}

	runID := "cli-" + uuid.NewString()
	ctx := ledger.WithSession(cmd.Context(), runID)
	ctx = logging.WithLogger(ctx, logger.With(zap.String("run_id", runID)))

	params := generator.Params{
		Goal:     genGoal,
		Audience: genAudience,
		Type:     genType,
		Pages:    genPages,
		Colors:   genColors,
		Tone:     genTone,
	}
	if err := params.Validate(); err != nil {
		return err
	}

	reporter := progress.NewReporter(os.Stderr)
	bp, failed, err := buildSite(ctx, gen, params, genHomeOnly, reporter)
	if err != nil {
		return err
	}

	res, err := export.Write(outputDir, bp, renderer)
	if err != nil {
		return fmt.Errorf("exporting site: %w", err)
	}

	fmt.Printf("Website written to %s (%d files)\n", res.Dir, len(res.Files))
	for _, slug := range res.Skipped {
		fmt.Printf("  not generated: %s\n", slug)
	}
	for slug, perr := range failed {
		fmt.Fprintf(os.Stderr, "  %s failed: %v\n", slug, perr)
	}
	return nil
}

// buildSite plans the site and generates its pages in blueprint order, home
// first. A home page failure aborts the run; other failures are returned per
// slug.
func buildSite(ctx context.Context, gen session.Generator, params generator.Params, homeOnly bool, reporter progress.Reporter) (*blueprint.Blueprint, map[string]error, error) {
	reporter.Start(2)
	reporter.Update(0, session.StepAnalyzing.Label())

	bp, err := gen.GenerateBlueprint(ctx, params)
	if err != nil {
		reporter.Finish()
		return nil, nil, fmt.Errorf("failed to generate website: %w", err)
	}

	home, _ := bp.Home()
	slugs := []string{home.Slug}
	if !homeOnly {
		for _, s := range bp.Slugs() {
			if s != home.Slug {
				slugs = append(slugs, s)
			}
		}
	}
	reporter.Start(len(slugs) + 1)
	reporter.Update(1, session.StepBuilding.Label())

	failed := make(map[string]error)
	for i, slug := range slugs {
		code, err := gen.GeneratePageCode(ctx, bp, slug)
		if err != nil {
			if slug == home.Slug {
				reporter.Finish()
				return nil, nil, fmt.Errorf("failed to generate website: %w", err)
			}
			failed[slug] = err
			continue
		}
		if bp, err = bp.WithPageCode(slug, code); err != nil {
			reporter.Finish()
			return nil, nil, err
		}
		reporter.Update(i+2, "Generated "+slug)
	}

	reporter.Update(len(slugs)+1, session.StepFinalizing.Label())
	reporter.Finish()
	return bp, failed, nil
}
