package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbitwatch/uphere-go/pkg/orbital"
	"github.com/orbitwatch/uphere-go/pkg/satellites"
)

// satellitesCommand creates the catalog listing command.
func (c *CLI) satellitesCommand() *cobra.Command {
	var (
		page    int
		country string
	)

	cmd := &cobra.Command{
		Use:   "satellites",
		Short: "List a page of the satellite catalog",
		Long: `List one page of the satellite catalog.

Pages are cached; repeating a query within the cache TTL issues no
upstream request. Use --country to filter by launch country server-side.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service()
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			var p *satellites.Page
			if country != "" {
				p, err = svc.SatellitesByCountry(cmd.Context(), country)
			} else {
				p, err = svc.Satellites(cmd.Context(), page)
			}
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Resolved %d satellites", len(p.Objects)))

			printObjects(p.Objects)
			printProvenance(len(p.Objects), p.Cached)
			if failed := p.Parse.Failed(); failed > 0 {
				printDetail("%d records skipped (missing NORAD ID)", failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "catalog page to fetch (1-based)")
	cmd.Flags().StringVar(&country, "country", "", "filter by launch country code (e.g. US)")

	return cmd
}

// printObjects renders a list of orbital objects as rows.
func printObjects(objects []orbital.Object) {
	if len(objects) == 0 {
		printInfo("No satellites found")
		return
	}
	for _, obj := range objects {
		line := StyleValue.Render(obj.Name) + " " + StyleDim.Render("norad="+obj.NoradID) +
			" " + StyleDim.Render(string(obj.Type))
		if obj.Country != "" {
			line += " " + StyleDim.Render(obj.Country)
		}
		if obj.LaunchDate != nil {
			line += " " + StyleDim.Render(obj.LaunchDate.Format("2006-01-02"))
		}
		fmt.Println("  " + line)
	}
}
