package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbitwatch/uphere-go/pkg/orbital"
)

// findCommand creates the search command (by name fragment or NORAD ID).
func (c *CLI) findCommand() *cobra.Command {
	var norad string

	cmd := &cobra.Command{
		Use:   "find [name-fragment]",
		Short: "Search satellites by name or NORAD ID",
		Long: `Search the satellite catalog.

With a name fragment the match is case-insensitive and partial ("iss"
matches "ISS (ZARYA)"). With --norad the lookup is an exact match on the
NORAD identifier. Both scan catalog pages up to a fixed bound, serving
already-cached pages without new upstream requests.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if norad == "" && len(args) == 0 {
				return fmt.Errorf("provide a name fragment or --norad")
			}

			svc, err := c.service()
			if err != nil {
				return err
			}

			if norad != "" {
				obj, found, err := svc.FindByNORADID(cmd.Context(), norad)
				if err != nil {
					return err
				}
				if !found {
					printInfo("No satellite with NORAD ID %s within the scan bound", norad)
					return nil
				}
				printSuccess("Found %s", obj.String())
				printObjects([]orbital.Object{*obj})
				return nil
			}

			prog := newProgress(c.Logger)
			matches, err := svc.FindByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Matched %d satellites", len(matches)))

			printObjects(matches)
			return nil
		},
	}

	cmd.Flags().StringVar(&norad, "norad", "", "look up by exact NORAD ID")

	return cmd
}
