// Package report writes reviewer-facing exports of batch scan results.
package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ardhi-group/parcel-cli/internal/enrich"
)

// WriteDuplicateReport writes a duplicate-scan report to an XLSX workbook:
// a summary sheet with the run metadata and a pairs sheet with one row per
// flagged listing pair, ordered as scanned (highest similarity first).
func WriteDuplicateReport(path string, scan *enrich.ScanReport) error {
	if scan == nil {
		return eris.New("report: nil scan report")
	}

	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	addRow(summary, "Run ID", scan.RunID)
	addRow(summary, "Generated", scan.Generated.Format("2006-01-02 15:04:05 UTC"))
	addRowInt(summary, "Similarity threshold", scan.Threshold)
	addRowInt(summary, "Listings scanned", scan.Scanned)
	addRowInt(summary, "Listings skipped", scan.Skipped)
	addRowInt(summary, "Flagged pairs", len(scan.Pairs))

	pairs, err := file.AddSheet("Pairs")
	if err != nil {
		return eris.Wrap(err, "report: add pairs sheet")
	}
	header := pairs.AddRow()
	for _, h := range []string{"Listing A", "Listing B", "Similarity"} {
		header.AddCell().Value = h
	}
	for _, pair := range scan.Pairs {
		row := pairs.AddRow()
		row.AddCell().Value = pair.ListingA
		row.AddCell().Value = pair.ListingB
		row.AddCell().SetInt(pair.Similarity)
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().Value = label
	row.AddCell().Value = value
}

func addRowInt(sheet *xlsx.Sheet, label string, value int) {
	row := sheet.AddRow()
	row.AddCell().Value = label
	row.AddCell().SetInt(value)
}
