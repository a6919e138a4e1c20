package domain

import (
	"log/slog"
	"time"
)

// BuildTable projects a decoded document onto an hourly table of capacity
// rows anchored at base. Layouts are parsed first, then every hour a layout
// touches is stamped, then each parameter block is ingested.
func BuildTable(doc *Document, base time.Time, capacity int, logger *slog.Logger) (*Table, error) {
	catalog, err := BuildCatalog(doc)
	if err != nil {
		return nil, err
	}

	table := NewTable(base, capacity)
	table.Issued = parseIssued(doc.Head.Product.CreationDate, logger)
	table.Stamp(catalog)

	for _, p := range doc.Data.Parameters {
		if err := IngestParameters(table, catalog, p, logger); err != nil {
			return nil, err
		}
	}

	logger.Debug("forecast table built",
		"layouts", catalog.Len(),
		"parameters", len(doc.Data.Parameters),
		"rows", len(table.VisibleRows()),
		"dropped", table.Stats.Dropped,
		"invalid_values", table.Stats.InvalidValues,
		"skipped_blocks", table.Stats.SkippedBlocks,
	)
	return table, nil
}

// parseIssued reads the product creation date. It is informational only, so a
// bad value is logged rather than failing the document.
func parseIssued(s string, logger *slog.Logger) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := ParseValidTime(s)
	if err != nil {
		logger.Warn("ignoring product creation date", "error", err)
		return time.Time{}
	}
	return t
}
