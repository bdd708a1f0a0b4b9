package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbitwatch/uphere-go/pkg/uphere"
)

// orbitCommand fetches the predicted ground track of a satellite.
func (c *CLI) orbitCommand() *cobra.Command {
	var period int

	cmd := &cobra.Command{
		Use:   "orbit <norad-id>",
		Short: "Show the predicted ground track of a satellite",
		Long: `Show the predicted ground track of a satellite over a time period.

This endpoint is tier-gated: on the free tier the upstream answers 404
even for satellites that exist. That case is reported as an unavailable
endpoint, not as missing data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.apiClient()
			if err != nil {
				return err
			}

			points, err := client.SatelliteOrbit(cmd.Context(), args[0], period)
			if err != nil {
				return tierGateHint(err)
			}

			for _, pt := range points {
				fmt.Printf("  %9.4f %9.4f  %s\n", pt.Latitude, pt.Longitude, StyleDim.Render(pt.Date))
			}
			printDetail("%d track points over %d minutes", len(points), period)
			return nil
		},
	}

	cmd.Flags().IntVar(&period, "period", 90, "prediction period in minutes")

	return cmd
}

// detailsCommand fetches the detail record of a satellite.
func (c *CLI) detailsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "details <norad-id>",
		Short: "Show the detail record of a satellite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.apiClient()
			if err != nil {
				return err
			}

			details, err := client.SatelliteDetails(cmd.Context(), args[0])
			if err != nil {
				return tierGateHint(err)
			}

			printKeyValue("name", details.Name)
			printKeyValue("norad", details.Number.String())
			printKeyValue("type", details.Type)
			printKeyValue("country", details.Country)
			printKeyValue("launched", details.LaunchDate)
			if details.OrbitalPeriodMin != nil {
				printKeyValue("period", fmt.Sprintf("%.1f min", *details.OrbitalPeriodMin))
			}
			return nil
		},
	}
}

// locationCommand fetches the current position of a satellite.
func (c *CLI) locationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "location <norad-id>",
		Short: "Show the current position of a satellite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.apiClient()
			if err != nil {
				return err
			}

			loc, err := client.SatelliteLocation(cmd.Context(), args[0])
			if err != nil {
				return tierGateHint(err)
			}

			printKeyValue("name", loc.Name)
			printKeyValue("latitude", fmt.Sprintf("%.4f", loc.Latitude))
			printKeyValue("longitude", fmt.Sprintf("%.4f", loc.Longitude))
			printKeyValue("height", fmt.Sprintf("%.1f km", loc.HeightKm))
			printKeyValue("speed", fmt.Sprintf("%.1f km/h", loc.SpeedKmh))
			return nil
		},
	}
}

// tierGateHint adds a next-step hint when an endpoint is tier-gated.
func tierGateHint(err error) error {
	var unavailable *uphere.EndpointUnavailableError
	if errors.As(err, &unavailable) {
		printError("Endpoint not included in your subscription tier")
		printDetail("Upgrade your plan to access %s", unavailable.Endpoint)
	}
	return err
}
