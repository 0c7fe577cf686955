package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-crisis-response/internal/export"
	"github.com/mr1hm/go-crisis-response/internal/models"
	"github.com/mr1hm/go-crisis-response/internal/query"
)

var (
	filterCategory string
	filterStatus   string
	filterSearch   string
	sortKey        string
	sortDir        string
	outPath        string
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Inspect help requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List requests after filtering and sorting",
	RunE:  listRequests,
}

var requestsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write filtered requests as CSV",
	Long: `Writes the filtered and sorted requests as CSV to stdout, or to a file
with --out. When --out names a directory the file is called
requests-YYYYMMDD-HHMMSS.csv.`,
	RunE: exportRequests,
}

func init() {
	for _, c := range []*cobra.Command{requestsListCmd, requestsExportCmd} {
		c.Flags().StringVarP(&filterCategory, "category", "c", "", "category filter")
		c.Flags().StringVarP(&filterStatus, "status", "s", "", "status filter (pending, approved, rejected)")
		c.Flags().StringVarP(&filterSearch, "query", "q", "", "case-insensitive search text")
		c.Flags().StringVar(&sortKey, "sort", "time", "sort key (urgency, type, time, requirement)")
		c.Flags().StringVar(&sortDir, "dir", "desc", "sort direction (asc, desc)")
	}
	requestsExportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	requestsCmd.AddCommand(requestsListCmd, requestsExportCmd)
}

func selectRequests(cmd *cobra.Command) ([]models.Request, error) {
	var f query.Filter
	if filterCategory != "" {
		c, err := models.ParseCategory(filterCategory)
		if err != nil {
			return nil, err
		}
		f.Category = c
	}
	if filterStatus != "" {
		s, err := models.ParseStatus(filterStatus)
		if err != nil {
			return nil, err
		}
		f.Status = s
	}
	f.Search = filterSearch

	order, err := query.ParseOrder(sortKey, sortDir)
	if err != nil {
		return nil, err
	}

	all, err := loadRequests(cmd.Context())
	if err != nil {
		return nil, err
	}
	return query.Apply(all, f, order), nil
}

func listRequests(cmd *cobra.Command, args []string) error {
	requests, err := selectRequests(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREQUESTER\tCATEGORY\tURGENCY\tSTATUS\tLOCATION\tSUBMITTED")
	for _, r := range requests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Requester, r.Category, r.Urgency, r.Status, r.Location,
			r.SubmittedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d request(s)\n", len(requests))
	return nil
}

func exportRequests(cmd *cobra.Command, args []string) error {
	requests, err := selectRequests(cmd)
	if err != nil {
		return err
	}

	if outPath == "" {
		return export.WriteCSV(cmd.OutOrStdout(), requests)
	}

	path := outPath
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, export.Filename(time.Now()))
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "writing %d request(s) to %s\n", len(requests), path)
	return writeExportFile(path, requests)
}

// createFile is swapped in tests.
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeExportFile reports a failed close as well as a failed write, since
// the final flush to disk can surface only at close.
func writeExportFile(path string, requests []models.Request) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, requests); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", path, err)
	}
	return nil
}
