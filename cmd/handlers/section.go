package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"aibrief/internal/config"
	"aibrief/internal/core"
	"aibrief/internal/pipeline"
)

var (
	sectionDays     int
	sectionLang     string
	sectionAttempts int
)

// NewSectionCmd creates the section command
func NewSectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section <key>",
		Short: "Run the pipeline for a single section and print its items as JSON",
		Long: `Section runs the full collect-curate-verify-summarize pipeline for
one newsletter section and prints the resulting items to stdout.
Useful for tuning a section's query and thresholds without a full run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSection(args[0])
		},
	}

	cmd.Flags().IntVar(&sectionDays, "days", 0, "search window in days (overrides run.days)")
	cmd.Flags().StringVar(&sectionLang, "lang", "", "summary language: en or fr")
	cmd.Flags().IntVar(&sectionAttempts, "max-attempts", 0, "retry ladder depth")

	return cmd
}

func runSection(key string) error {
	cfg := config.Get()
	ctx := context.Background()

	sections := sectionsForRun(cfg)
	section, ok := sections[core.SectionKey(key)]
	if !ok {
		return fmt.Errorf("unknown section %q (valid: %s)", key, sectionKeys())
	}

	opts := pipeline.Options{
		Days:        cfg.Run.Days,
		MaxAttempts: cfg.Run.MaxAttempts,
		Workers:     1,
		Language:    cfg.Run.Language,
	}
	if sectionDays > 0 {
		opts.Days = sectionDays
	}
	if sectionAttempts > 0 {
		opts.MaxAttempts = sectionAttempts
	}
	if sectionLang != "" {
		opts.Language = sectionLang
	}

	p, _, err := buildPipeline(ctx, cfg, opts)
	if err != nil {
		return err
	}

	items := p.RunSection(ctx, section)

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func sectionKeys() string {
	keys := make([]string, 0, len(core.SectionOrder))
	for _, key := range core.SectionOrder {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
