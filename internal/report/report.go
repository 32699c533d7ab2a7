// Package report renders the per-tick "[Calls]"/"[Vehicles]" status
// tables (C11), grounded on original_source/main.py's
// show_all_users/show_all_vehicles tabulate-based console output.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"darp-dispatch/internal/models"
)

// WriteCalls prints the "[Calls]" table: one row per active request.
func WriteCalls(w io.Writer, requests []*models.Request) {
	fmt.Fprintln(w, "[Calls]")
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tpickup\tdropoff\tparty\trequested\twaiting\ttravel\tdetour")
	for _, r := range requests {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%s\t%.2f\n",
			r.ID, r.Pickup, r.Dropoff, r.PartySize,
			r.RequestAt.Format(time.Kitchen),
			humanize.SIWithDigits(r.ExpectedWaitingSecs, 0, "s"),
			humanize.SIWithDigits(r.ExpectedTravelSecs, 0, "s"),
			r.DetourRatio(),
		)
	}
	tw.Flush()
}

// WriteVehicles prints the "[Vehicles]" table: one row per active
// vehicle, with its route's stop count (not the stops themselves), its
// current location and its committed next stop.
func WriteVehicles(w io.Writer, vehicles []*models.Vehicle) {
	fmt.Fprintln(w, "[Vehicles]")
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "id\torigin\tcapacity\ton board\ttravel\tstops\there\tnext")
	for _, v := range vehicles {
		next := "-"
		if v.NextLoc != nil {
			next = fmt.Sprintf("%d", *v.NextLoc)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%d\t%d\t%s\n",
			v.ID, v.Origin, v.Capacity, v.NumOnBoard(),
			humanize.SIWithDigits(v.TravelTimeSecs, 0, "s"),
			len(v.Route), v.Here, next,
		)
	}
	tw.Flush()
}
