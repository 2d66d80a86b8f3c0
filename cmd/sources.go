package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agora/internal/validation"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured source roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		if len(cfg.Sources) == 0 {
			fmt.Println("No sources configured.")
			return nil
		}

		validator := validation.NewFeedURLValidator()
		for _, src := range cfg.Sources {
			status := "ok"
			if _, err := validator.ValidateAndNormalize(src.FeedURL); err != nil {
				status = fmt.Sprintf("invalid: %v", err)
			}
			fmt.Printf("%-20s %-30s %s [%s]\n", src.ID, src.Name, src.FeedURL, status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
