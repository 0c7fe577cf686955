package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-crisis-response/internal/models"
	"github.com/mr1hm/go-crisis-response/internal/severity"
	"github.com/mr1hm/go-crisis-response/internal/transfer"
)

var overviewCmd = &cobra.Command{
	Use:       "overview [international|national|local]",
	Short:     "Summarize the regions of one dashboard view",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"international", "national", "local"},
	RunE:      overview,
}

var fundingCmd = &cobra.Command{
	Use:   "funding [country]",
	Short: "Total the priced aid items requested for a country",
	Args:  cobra.ExactArgs(1),
	RunE:  funding,
}

var transferDelay time.Duration

var transferCmd = &cobra.Command{
	Use:   "transfer [recipient] [amount]",
	Short: "Run one simulated transfer and print its hash",
	Args:  cobra.ExactArgs(2),
	RunE:  simulateTransfer,
}

func init() {
	transferCmd.Flags().DurationVar(&transferDelay, "delay", 2*time.Second, "simulated confirmation delay")
}

func overview(cmd *cobra.Command, args []string) error {
	scope := models.Scope(strings.ToLower(args[0]))
	if !scope.Valid() {
		return fmt.Errorf("unknown scope %q", args[0])
	}

	catalog, _, closeFn, err := source()
	if err != nil {
		return err
	}
	defer closeFn()

	regions, err := catalog.Regions(cmd.Context(), scope)
	if err != nil {
		return err
	}
	sum := severity.Summarize(scope, regions)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s view: population %s, %d active alerts, %d critical areas, %d stable regions\n\n",
		scope, sum.TotalPopulation, sum.ActiveAlerts, sum.CriticalAreas, sum.StableRegions)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REGION\tPOPULATION\tALERTS\tSCORE\tINDICATORS")
	for _, r := range regions {
		parts := make([]string, 0, len(r.Indicators))
		for _, ind := range r.Indicators {
			parts = append(parts, fmt.Sprintf("%s=%s (%s)", ind.Label, ind.Level, severity.TrendOf(ind.Level)))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Name, r.Population, r.Alerts, severity.RegionScore(r), strings.Join(parts, ", "))
	}
	return w.Flush()
}

func funding(cmd *cobra.Command, args []string) error {
	catalog, _, closeFn, err := source()
	if err != nil {
		return err
	}
	defer closeFn()

	aid, err := catalog.AidRequests(cmd.Context())
	if err != nil {
		return err
	}
	for country, items := range aid {
		if !strings.EqualFold(country, args[0]) {
			continue
		}
		total, skipped := severity.FundingTotal(items)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d item(s), USD %s requested", country, len(items), total.StringFixed(2))
		if skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d without a price", skipped)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	}
	return fmt.Errorf("no aid requests for %q", args[0])
}

func simulateTransfer(cmd *cobra.Command, args []string) error {
	amount, err := severity.ParseAmount(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "sending USD %s to %s...\n", amount.StringFixed(2), args[0])
	hash, err := transfer.Simulate(cmd.Context(), transferDelay)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
