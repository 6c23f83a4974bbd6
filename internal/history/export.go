package history

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// ExportCSV writes every record of the store as CSV, oldest first.
func ExportCSV(s Store, w io.Writer) error {
	records, err := s.List()
	if err != nil {
		return err
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("history: failed to export CSV: %v", err)
	}
	return nil
}
