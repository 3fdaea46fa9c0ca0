package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/okian/prodboard/internal/domain/model"
)

// WriteCSV writes the header and one line per event in Rows order.
func WriteCSV(w io.Writer, events []model.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range Rows(events) {
		if err := cw.Write(r.Cells()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
