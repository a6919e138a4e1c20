package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
)

const (
	textRule    = "========== ==  === === === === === === === === === ==================="
	textHeader1 = "DATE...... HR  AIR.................... WIND... SNW CONDITIONS........."
	textHeader2 = "               TMP APR MIN MAX HUM CLD SPD DIR"

	blankDate = "           "
	blankCell = "    "
)

// palette colours the structural parts of the text table.
type palette struct {
	rule *color.Color
	date *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		rule: color.New(color.FgBlue),
		date: color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.rule, p.date} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func renderText(sb *strings.Builder, t *domain.Table, opts Options) {
	p := newPalette(opts.Color)

	if opts.Legend == LegendTop {
		writeLegend(sb, t, opts)
	}

	rule := p.rule.Sprint(textRule) + "\n"
	sb.WriteString(rule)
	sb.WriteString(textHeader1 + "\n")
	sb.WriteString(textHeader2 + "\n")
	sb.WriteString(rule)

	for _, l := range lines(t, opts.Location) {
		if l.newDay {
			sb.WriteString(p.date.Sprint(l.local.Format("2006-01-02 ")))
		} else {
			sb.WriteString(blankDate)
		}
		fmt.Fprintf(sb, "%02d ", l.local.Hour())

		r := l.row
		for _, v := range []*int{
			r.TempHourly,
			r.TempApparent,
			r.TempMin,
			r.TempMax,
			r.Humidity,
			r.CloudAmount,
			r.WindSpeed,
			r.WindDir,
			r.SnowAmount,
		} {
			writeCell(sb, v)
		}
		if r.Weather != nil {
			sb.WriteString(" " + *r.Weather)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(rule)

	if opts.Legend == LegendBottom {
		writeLegend(sb, t, opts)
	}
}

// writeCell right-justifies v in four columns, or pads when absent.
func writeCell(sb *strings.Builder, v *int) {
	if v == nil {
		sb.WriteString(blankCell)
		return
	}
	fmt.Fprintf(sb, "%4d", *v)
}
