package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"aibrief/internal/config"
	"aibrief/internal/sourcequality"
)

// NewFeedbackCmd creates the feedback command
func NewFeedbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <url> <up|down>",
		Short: "Record reader feedback for an article's domain",
		Long: `Feedback records a thumbs-up or thumbs-down rating for the domain
of the given article URL. Recent down-ratings temporarily reduce the
domain's ranking boost in subsequent runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(args[0], args[1])
		},
	}
}

func runFeedback(rawURL, rating string) error {
	if rating != "up" && rating != sourcequality.RatingDown {
		return fmt.Errorf("rating must be \"up\" or \"down\", got %q", rating)
	}
	domain := sourcequality.ExtractDomain(rawURL)
	if domain == "" {
		return fmt.Errorf("could not extract a domain from %q", rawURL)
	}

	cfg := config.Get()
	sourcequality.NewTracker(cfg.Quality.Dir).RecordFeedback(rawURL, rating)

	fmt.Printf("Recorded %s feedback for %s\n", rating, domain)
	return nil
}
