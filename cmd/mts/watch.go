package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campus-mts/mts/internal/feed"
)

var (
	watchToken    string
	watchName     string
	watchPassword string
	watchBaseURL  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll a user's notification inbox and print changes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		baseURL := cfg.Feed.BaseURL
		if watchBaseURL != "" {
			baseURL = watchBaseURL
		}
		ctx := cmd.Context()

		session, err := openSession(ctx, baseURL)
		if err != nil {
			return err
		}
		user := session.CurrentUser()
		logger.Info("watching notifications", zap.Int64("user_id", user.ID), zap.String("user", user.Name))

		client := feed.NewClient(session, feed.Options{
			BaseURL:      baseURL,
			PollInterval: cfg.Feed.PollInterval(),
			Logger:       logger,
		})
		updates, cancel := client.Subscribe()
		defer cancel()

		go func() {
			seen := make(map[int64]bool)
			for rows := range updates {
				for i := len(rows) - 1; i >= 0; i-- {
					n := rows[i]
					if seen[n.ID] {
						continue
					}
					seen[n.ID] = true
					marker := " "
					if !n.IsRead {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s\n", marker, n.CreatedAt.Format("2006-01-02 15:04"), n.Message)
				}
			}
		}()

		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchToken, "token", os.Getenv("MTS_TOKEN"), "bearer token (defaults to $MTS_TOKEN)")
	watchCmd.Flags().StringVar(&watchName, "name", "", "log in with this user name instead of a token")
	watchCmd.Flags().StringVar(&watchPassword, "password", os.Getenv("MTS_PASSWORD"), "password for --name (defaults to $MTS_PASSWORD)")
	watchCmd.Flags().StringVar(&watchBaseURL, "url", "", "API base URL (defaults to FEED_BASE_URL)")
}

func openSession(ctx context.Context, baseURL string) (feed.Session, error) {
	if watchName != "" {
		return feed.Login(ctx, baseURL, nil, watchName, watchPassword)
	}
	if watchToken == "" {
		return nil, errors.New("either --token or --name is required")
	}
	session := feed.NewTokenSession(watchToken)
	if err := session.Load(ctx, baseURL, nil); err != nil {
		return nil, err
	}
	return session, nil
}
