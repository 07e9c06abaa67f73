package main

import (
	"fmt"
	"os"

	"fortio.org/sets"
	"github.com/praetorian-inc/scanutil/pkg/stats"
	"github.com/praetorian-inc/scanutil/pkg/store"
	"github.com/praetorian-inc/scanutil/pkg/types"
	"github.com/spf13/cobra"
)

var (
	reportDatastore string
	reportScanID    int64
	reportAll       bool
	reportFormat    string
	reportColor     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from stored scan results",
	Long:  "Read a scan from a datastore and render its detections and summary",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "scanutil.db", "Path to the results database")
	reportCmd.Flags().Int64Var(&reportScanID, "scan", 0, "Scan ID to report (0 for the latest)")
	reportCmd.Flags().BoolVar(&reportAll, "all", false, "Aggregate every stored scan")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json, sarif")
	reportCmd.Flags().StringVar(&reportColor, "color", envConfig.Color, "Color output: auto, always, never")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportDatastore == ":memory:" {
		return fmt.Errorf("report needs a database file, not %s", reportDatastore)
	}
	if _, err := os.Stat(reportDatastore); err != nil {
		return fmt.Errorf("datastore does not exist: %s", reportDatastore)
	}

	s, err := store.New(store.Config{Path: reportDatastore})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	scans, err := selectScans(s)
	if err != nil {
		return err
	}

	summary := stats.New()
	var files []fileOutcome
	root := ""
	for _, scan := range scans {
		scanStats, scanFiles, err := loadScan(s, scan)
		if err != nil {
			return err
		}
		summary.Merge(scanStats)
		files = append(files, scanFiles...)
		root = scan.Root
	}
	if len(scans) > 1 {
		root = ""
	}

	return writeReport(cmd.OutOrStdout(), reportFormat, reportColor, root, storedCatalog(files), files, summary)
}

// selectScans resolves --scan and --all to the scans to report.
func selectScans(s store.Store) ([]*store.Scan, error) {
	if reportAll {
		scans, err := s.GetScans()
		if err != nil {
			return nil, fmt.Errorf("listing scans: %w", err)
		}
		if len(scans) == 0 {
			return nil, fmt.Errorf("no scans recorded in %s", reportDatastore)
		}
		return scans, nil
	}

	if reportScanID == 0 {
		latest, err := store.Latest(s)
		if err != nil {
			return nil, err
		}
		return []*store.Scan{latest}, nil
	}

	scans, err := s.GetScans()
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	for _, scan := range scans {
		if scan.ID == reportScanID {
			return []*store.Scan{scan}, nil
		}
	}
	return nil, fmt.Errorf("scan %d not found in %s", reportScanID, reportDatastore)
}

// loadScan rebuilds the statistics and file outcomes of a stored scan.
func loadScan(s store.Store, scan *store.Scan) (*stats.Stats, []fileOutcome, error) {
	detections, err := s.GetDetections(scan.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading detections: %w", err)
	}
	fileErrors, err := s.GetErrors(scan.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading errors: %w", err)
	}

	st := stats.New()
	files := make([]fileOutcome, 0, len(detections)+len(fileErrors))
	for _, d := range detections {
		st.Update(d)
		files = append(files, fileOutcome{Path: d.Path, Detection: d})
	}
	for _, e := range fileErrors {
		st.IncErrors()
		files = append(files, fileOutcome{Path: e.Path, Error: e.Message})
	}
	st.SetElapsed(scan.Elapsed)

	return st, files, nil
}

// storedCatalog collects the distinct signatures referenced by detections,
// in first-seen order.
func storedCatalog(files []fileOutcome) []*types.Signature {
	seen := sets.New[string]()
	var catalog []*types.Signature
	for _, f := range files {
		if f.Detection == nil || f.Detection.Signature == nil {
			continue
		}
		sig := f.Detection.Signature
		if seen.Has(sig.ID) {
			continue
		}
		seen.Add(sig.ID)
		catalog = append(catalog, sig)
	}
	return catalog
}
