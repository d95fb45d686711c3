// Package export renders transaction sets as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"finboard/internal/core"
)

// CSVFilename is the download name for transaction exports.
const CSVFilename = "transactions.csv"

var csvHeader = []string{"id", "title", "amount", "status", "date"}

// WriteCSV streams the rows as CSV with a header line. Amounts are
// rendered as decimal units, dates as YYYY-MM-DD.
func WriteCSV(w io.Writer, rows []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range rows {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Amount.Decimal(),
			string(t.Status),
			t.Date.ISO(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
