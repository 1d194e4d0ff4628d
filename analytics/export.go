package analytics

import (
	"encoding/json"
	"fmt"
	"io"
)

// ExportDocument is the downloadable form of a report: the MetricsReport
// fields followed by the raw trades it was computed from.
type ExportDocument struct {
	MetricsReport
	Trades []Trade `json:"trades"`
}

// WriteExport encodes report and trades as indented JSON. Trades whose P/L is
// not a finite number are written without one, as open trades.
func WriteExport(w io.Writer, report MetricsReport, trades []Trade) error {
	doc := ExportDocument{
		MetricsReport: report,
		Trades:        make([]Trade, len(trades)),
	}
	for i, t := range trades {
		if _, ok := t.realizedPnL(); !ok {
			t.PnL = nil
		}
		doc.Trades[i] = t
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// ReadExport decodes a document written by WriteExport.
func ReadExport(r io.Reader) (ExportDocument, error) {
	var doc ExportDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return ExportDocument{}, fmt.Errorf("decode export: %w", err)
	}
	return doc, nil
}
