package bench

import (
	"fmt"
	"io"
)

// WriteReport renders the benchmark records as a markdown table, one row
// per query form.
func WriteReport(w io.Writer, records []Record) error {
	if _, err := fmt.Fprintln(w, "| Query | Model | Avg time (ms) | Results |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "| :--- | :--- | ---: | ---: |"); err != nil {
		return err
	}
	for _, r := range records {
		timing := fmt.Sprintf("%.2f", r.AvgMs)
		if r.Err != "" {
			timing = r.Err
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %d |\n", r.Query, r.Model, timing, r.Count); err != nil {
			return err
		}
	}
	return nil
}
