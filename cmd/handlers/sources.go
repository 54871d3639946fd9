package handlers

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"aibrief/internal/config"
	"aibrief/internal/sourcequality"
)

// NewSourcesCmd creates the sources command
func NewSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Show the source-quality ledger's per-domain stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSources()
		},
	}
}

func runSources() error {
	cfg := config.Get()
	tracker := sourcequality.NewTracker(cfg.Quality.Dir)

	stats := tracker.DomainStats()
	if len(stats) == 0 {
		fmt.Println("No source quality history recorded yet.")
		return nil
	}

	domains := make([]string, 0, len(stats))
	for domain := range stats {
		domains = append(domains, domain)
	}
	sort.Slice(domains, func(i, j int) bool {
		a, b := stats[domains[i]], stats[domains[j]]
		if a.Boost != b.Boost {
			return a.Boost > b.Boost
		}
		return domains[i] < domains[j]
	})

	fmt.Printf("%-40s %8s %10s %8s\n", "DOMAIN", "ITEMS", "AVG SCORE", "BOOST")
	for _, domain := range domains {
		s := stats[domain]
		fmt.Printf("%-40s %8d %10.1f %8.2f\n", domain, s.Count, s.AvgScore, s.Boost)
	}
	return nil
}
