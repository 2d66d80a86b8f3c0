package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"agora/internal/refresh"
	"agora/internal/store"
)

var refreshForce bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch every source once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		st, err := store.Open(cfg)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		refresher := refresh.New(st, cfg)
		refresher.SetForceRefresh(refreshForce)

		result, err := refresher.RefreshAll(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Sources updated: %d\n", result.UpdatedCount)
		fmt.Printf("New posts:       %d\n", len(result.NewPosts))
		for _, p := range result.NewPosts {
			fmt.Printf("  [%s] %s\n", p.PublicationName, p.Title)
		}
		return nil
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshForce, "force", false, "bypass conditional-request caching")
	rootCmd.AddCommand(refreshCmd)
}
