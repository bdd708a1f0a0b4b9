package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statsCommand shows the client's request accounting.
func (c *CLI) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show request statistics and rate-limit state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.apiClient()
			if err != nil {
				return err
			}

			stats := client.RequestStats()
			printKeyValue("rate limit", fmt.Sprintf("%.1f req/s", stats.RateLimit))
			printKeyValue("total requests", fmt.Sprintf("%d", stats.TotalRequests))
			if stats.LastRequestAt.IsZero() {
				printKeyValue("last request", "never")
			} else {
				printKeyValue("last request", stats.LastRequestAt.Format(time.RFC3339))
			}
			if stats.CanRequestNow {
				printSuccess("A request can be made now")
			} else {
				printInfo("Next request allowed in %s", stats.TimeUntilNext.Round(time.Millisecond))
			}
			return nil
		},
	}
}
