package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"aibrief/internal/config"
	"aibrief/internal/core"
	"aibrief/internal/logger"
	"aibrief/internal/pipeline"
	"aibrief/internal/render"
	"aibrief/internal/summarize"
)

var (
	generateDays     int
	generateLang     string
	generateWorkers  int
	generateAttempts int
	generateDate     string
	generateOut      string
	generateDryRun   bool
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full pipeline and write the newsletter HTML",
		Long: `Generate collects candidates for every section, curates and
verifies them, summarizes the survivors with the configured LLM, and
writes the rendered newsletter to the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate()
		},
	}

	cmd.Flags().IntVar(&generateDays, "days", 0, "search window in days (overrides run.days)")
	cmd.Flags().StringVar(&generateLang, "lang", "", "newsletter language: en or fr (overrides run.language)")
	cmd.Flags().IntVar(&generateWorkers, "workers", 0, "concurrent section workers (overrides run.workers)")
	cmd.Flags().IntVar(&generateAttempts, "max-attempts", 0, "retry ladder depth per section (overrides run.max_attempts)")
	cmd.Flags().StringVar(&generateDate, "date", "", "run date stamped into tracking links (default today, YYYY-MM-DD)")
	cmd.Flags().StringVar(&generateOut, "out", "", "output directory (overrides output.directory)")
	cmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print the newsletter HTML instead of writing it")

	return cmd
}

func runGenerate() error {
	cfg := config.Get()
	ctx := context.Background()

	opts := pipeline.Options{
		Days:        cfg.Run.Days,
		MaxAttempts: cfg.Run.MaxAttempts,
		Workers:     cfg.Run.Workers,
		Language:    cfg.Run.Language,
	}
	if generateDays > 0 {
		opts.Days = generateDays
	}
	if generateWorkers > 0 {
		opts.Workers = generateWorkers
	}
	if generateAttempts > 0 {
		opts.MaxAttempts = generateAttempts
	}
	if generateLang != "" {
		opts.Language = generateLang
	}

	runDate := generateDate
	if runDate == "" {
		runDate = time.Now().UTC().Format("2006-01-02")
	}

	p, gen, err := buildPipeline(ctx, cfg, opts)
	if err != nil {
		return err
	}

	started := time.Now()
	logger.Info("Starting newsletter run", "date", runDate, "days", opts.Days, "language", opts.Language)

	sections := sectionsForRun(cfg)
	results := p.RunSections(ctx, sections)

	tldr := summarize.TLDR(ctx, gen, allItems(results), opts.Language)

	html, err := render.Render(results, runDate, tldr, opts.Language)
	if err != nil {
		return fmt.Errorf("failed to render newsletter: %w", err)
	}

	if generateDryRun {
		fmt.Println(html)
		return nil
	}

	outDir := cfg.Output.Directory
	if generateOut != "" {
		outDir = generateOut
	}
	path, err := render.WriteNewsletter(html, outDir, opts.Language)
	if err != nil {
		return fmt.Errorf("failed to write newsletter: %w", err)
	}

	printRunReport(sections, results, path, time.Since(started))
	fmt.Printf("Suggested subject: %s (%s)\n", cfg.Run.SubjectPrefix, runDate)
	return nil
}

// allItems flattens section results in canonical order for the TL;DR.
func allItems(results map[core.SectionKey][]core.SummaryItem) []core.SummaryItem {
	var items []core.SummaryItem
	for _, key := range core.SectionOrder {
		items = append(items, results[key]...)
	}
	return items
}

func printRunReport(sections map[core.SectionKey]core.SectionConfig, results map[core.SectionKey][]core.SummaryItem, path string, elapsed time.Duration) {
	fmt.Println(titleStyle.Render("AI This Week"))

	total := 0
	for _, key := range core.SectionOrder {
		section, ok := sections[key]
		if !ok {
			continue
		}
		count := len(results[key])
		total += count
		line := fmt.Sprintf("  %-28s %d items", section.Name, count)
		if count == 0 {
			fmt.Println(emptyStyle.Render(line + " (empty)"))
		} else {
			fmt.Println(sectionStyle.Render(line))
		}
	}

	fmt.Printf("\n%d items in %s\n", total, elapsed.Round(time.Second))
	fmt.Println(pathStyle.Render(path))
}
