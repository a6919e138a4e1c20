// Package report renders a built forecast table as a fixed-width text table
// or an HTML fragment. Both formats share row selection and day grouping.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
)

// Format selects the output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// LegendPosition places the Info/Legend block relative to the table.
type LegendPosition string

const (
	LegendTop    LegendPosition = "top"
	LegendBottom LegendPosition = "bottom"
	LegendNone   LegendPosition = "none"
)

var (
	ErrUnknownFormat         = errors.New("unknown report format")
	ErrUnknownLegendPosition = errors.New("unknown legend position")
)

// ParseFormat parses a format name. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ParseLegendPosition parses a legend position. The empty string selects top.
func ParseLegendPosition(s string) (LegendPosition, error) {
	switch p := LegendPosition(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return LegendTop, nil
	case LegendTop, LegendBottom, LegendNone:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLegendPosition, s)
	}
}

// ContentType returns the MIME type of a rendered report.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Options controls rendering.
type Options struct {
	Format Format
	Legend LegendPosition
	// Location is the calendar used for hours and day grouping. Nil means UTC.
	Location *time.Location
	// GeneratedAt is printed in the Info block.
	GeneratedAt time.Time
	// Color enables ANSI colouring of the text table's rules and date column.
	Color bool
}

// Render writes the table in the requested format.
func Render(t *domain.Table, opts Options) string {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Legend == "" {
		opts.Legend = LegendTop
	}

	var sb strings.Builder
	if opts.Format == FormatHTML {
		renderHTML(&sb, t, opts)
	} else {
		renderText(&sb, t, opts)
	}
	return sb.String()
}

// line is one rendered row together with its local time.
type line struct {
	row    *domain.Row
	local  time.Time
	newDay bool
}

// lines selects the visible rows in index order and marks the first row of
// each local calendar day.
func lines(t *domain.Table, loc *time.Location) []line {
	rows := t.VisibleRows()
	out := make([]line, 0, len(rows))

	var prevYear, prevDay int
	for _, r := range rows {
		local := r.Time.In(loc)
		y, d := local.Year(), local.YearDay()
		out = append(out, line{
			row:    r,
			local:  local,
			newDay: y != prevYear || d != prevDay,
		})
		prevYear, prevDay = y, d
	}
	return out
}
