package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
)

const htmlHeader = `<tr style="background-color: lightsteelblue;">` +
	`<th>HR&nbsp;&nbsp;</th>` +
	`<th colspan="5">AIR</th>` +
	`<th colspan="2">WIND</th>` +
	`<th>SNOW</th>` +
	`<th>CONDITIONS</th>` +
	"</tr>\n" +
	"<tr>" +
	"<th></th>" +
	"<th>APR</th>" +
	"<th>MIN</th>" +
	"<th>MAX</th>" +
	"<th>HUM</th>" +
	"<th>CLD</th>" +
	"<th>SPD</th>" +
	"<th>DIR</th>" +
	"</tr>\n"

// pinkBorder flags the min/max cells of an hour carrying the day's maximum.
const pinkBorder = ` style="border: solid 1px pink; border-bottom: none"`

func renderHTML(sb *strings.Builder, t *domain.Table, opts Options) {
	sb.WriteString("<table border=\"0\">\n")
	sb.WriteString(htmlHeader)

	for _, l := range lines(t, opts.Location) {
		if l.newDay {
			sb.WriteString("\n<tr><td colspan=\"12\" style=\"border: lightsteelblue 1px solid;\">")
			sb.WriteString(l.local.Format("2006-01-02 Mon"))
			sb.WriteString("</td></tr>\n")
		}
		sb.WriteString("<tr>")

		r := l.row
		style := ""
		if r.TempMax != nil {
			style = pinkBorder
		}

		fmt.Fprintf(sb, "<td>%02d</td>", l.local.Hour())
		writeHTMLCell(sb, "", r.TempApparent)
		writeHTMLCell(sb, style, r.TempMin)
		writeHTMLCell(sb, style, r.TempMax)
		writeHTMLCell(sb, "", r.Humidity)
		writeHTMLCell(sb, "", r.CloudAmount)
		writeHTMLCell(sb, "", r.WindSpeed)
		writeHTMLCell(sb, "", r.WindDir)
		if r.SnowAmount != nil && *r.SnowAmount > 0 {
			writeHTMLCell(sb, "", r.SnowAmount)
		} else {
			sb.WriteString("<td></td>")
		}
		if r.Weather != nil {
			sb.WriteString("<td>" + html.EscapeString(*r.Weather) + "</td>")
		} else {
			sb.WriteString("<td></td>")
		}
		sb.WriteString("</tr>\n")
	}

	sb.WriteString("</table>\n")

	if opts.Legend != LegendNone {
		var legend strings.Builder
		writeLegend(&legend, t, opts)
		sb.WriteString("<pre>" + html.EscapeString(legend.String()) + "</pre>\n")
	}
}

func writeHTMLCell(sb *strings.Builder, style string, v *int) {
	if v == nil {
		sb.WriteString("<td></td>")
		return
	}
	fmt.Fprintf(sb, "<td%s>%d</td>", style, *v)
}
