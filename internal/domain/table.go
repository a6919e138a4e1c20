package domain

import (
	"time"
)

// DefaultWindowHours is the default table capacity: seven days.
const DefaultWindowHours = 24 * 7

// Row is one forecast hour. Optional readings are nil when no parameter
// supplied them, so a blank cell is never confused with a zero reading.
type Row struct {
	// Time is the hour start, or zero when no layout interval touched this hour.
	Time time.Time

	TempHourly   *int // celsius
	TempMax      *int // celsius
	TempMin      *int // celsius
	TempApparent *int // celsius
	Humidity     *int // percent
	WindSpeed    *int // meters per second
	WindDir      *int // degrees
	CloudAmount  *int // percent
	SnowAmount   *int // centimeters
	Weather      *string
}

// HasData reports whether at least one optional field is set.
func (r *Row) HasData() bool {
	return r.TempHourly != nil ||
		r.TempMax != nil ||
		r.TempMin != nil ||
		r.TempApparent != nil ||
		r.Humidity != nil ||
		r.WindSpeed != nil ||
		r.WindDir != nil ||
		r.CloudAmount != nil ||
		r.SnowAmount != nil ||
		r.Weather != nil
}

// Visible reports whether the row takes part in rendering.
func (r *Row) Visible() bool {
	return !r.Time.IsZero() && r.HasData()
}

// Stats counts the non-fatal losses of one table build.
type Stats struct {
	Dropped       int // values whose hour fell outside the window
	InvalidValues int // non-numeric value text
	SkippedBlocks int // parameter blocks skipped (unrecognized temperature kind)
}

// Table is a fixed-capacity hourly forecast anchored at BaseTime.
// Row i covers [BaseTime + i·1h, BaseTime + (i+1)·1h).
type Table struct {
	BaseTime time.Time
	// Issued is the product creation time, zero when the document has none.
	Issued time.Time
	Rows   []Row
	Stats  Stats
}

// NewTable allocates an empty table of capacity hours. A non-positive
// capacity falls back to DefaultWindowHours.
func NewTable(base time.Time, capacity int) *Table {
	if capacity <= 0 {
		capacity = DefaultWindowHours
	}
	return &Table{
		BaseTime: base,
		Rows:     make([]Row, capacity),
	}
}

// Capacity returns the number of hourly rows.
func (t *Table) Capacity() int { return len(t.Rows) }

// Project maps ts to a row index relative to base, or false when the hour
// lies before base or at/after capacity.
func Project(base, ts time.Time, capacity int) (int, bool) {
	d := ts.Sub(base)
	if d < 0 {
		return 0, false
	}
	idx := int(d / time.Hour)
	if idx >= capacity {
		return 0, false
	}
	return idx, true
}

// Row returns the row covering ts, or nil when ts is outside the window.
func (t *Table) Row(ts time.Time) *Row {
	idx, ok := Project(t.BaseTime, ts, len(t.Rows))
	if !ok {
		return nil
	}
	return &t.Rows[idx]
}

// Stamp marks every hour that some layout interval starts in. It runs once,
// before parameters are ingested.
func (t *Table) Stamp(c *Catalog) {
	for _, tl := range c.Layouts() {
		for _, iv := range tl.Intervals {
			idx, ok := Project(t.BaseTime, iv.Start, len(t.Rows))
			if !ok {
				continue
			}
			t.Rows[idx].Time = t.BaseTime.Add(time.Duration(idx) * time.Hour)
		}
	}
}

// VisibleRows returns the rows that render, in time order.
func (t *Table) VisibleRows() []*Row {
	var out []*Row
	for i := range t.Rows {
		if t.Rows[i].Visible() {
			out = append(out, &t.Rows[i])
		}
	}
	return out
}
