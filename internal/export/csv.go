// Package export renders routine logs as CSV for spreadsheet download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/haneulpark/habit-diary/internal/models"
)

// Header is the fixed CSV column order.
var Header = []string{"Date", "Day", "Start", "End", "Task", "Done", "Rating", "IsHabit"}

// utf8BOM keeps spreadsheet apps from misdetecting the encoding of Korean
// task labels.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the routines as UTF-8 CSV with a leading BOM. Booleans are
// rendered as Yes/No and the day column is derived from the date.
func WriteCSV(w io.Writer, routines []models.Routine) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range routines {
		record := []string{
			r.Date,
			r.Day(),
			r.Start,
			r.End,
			r.Task,
			yesNo(r.Done),
			strconv.Itoa(r.Rating),
			yesNo(r.IsHabit),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
