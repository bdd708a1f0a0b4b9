package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// countriesCommand lists the launch countries usable as filters.
func (c *CLI) countriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List launch countries usable as satellite filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}

			countries, err := svc.Countries(cmd.Context())
			if err != nil {
				return err
			}

			for _, country := range countries {
				printKeyValue(country.Abbreviation, country.Name)
			}
			printDetail("%d countries", len(countries))
			return nil
		},
	}
}

// launchSitesCommand lists the known launch sites.
func (c *CLI) launchSitesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "launch-sites",
		Short: "List known satellite launch sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.apiClient()
			if err != nil {
				return err
			}

			sites, err := client.LaunchSites(cmd.Context())
			if err != nil {
				return err
			}

			for _, site := range sites {
				label := site.Name
				if site.Country != "" {
					label += " " + StyleDim.Render("("+site.Country+")")
				}
				fmt.Println("  " + label)
			}
			printDetail("%d launch sites", len(sites))
			return nil
		},
	}
}
