package report

import (
	"strings"
	"time"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
)

var legend = []string{
	"TMP -- hourly temperature, celsius",
	"APR -- hourly apparent temperature, celsius",
	"MIN -- minimal temperature for a day, celsius",
	"MAX -- maximum temperature for a day, celsius",
	"HUM -- humidity, relative",
	"CLD -- cloud amount, percent",
	"SPD -- wind speed, meters per second",
	"DIR -- wind direction, degrees",
	"SNW -- snow, centimeters",
	"TND -- thunderstorms",
	"SHW -- rain showers",
}

// writeLegend writes the Info block followed by the column legend.
func writeLegend(sb *strings.Builder, t *domain.Table, opts Options) {
	sb.WriteString("\nInfo\n====\n")
	sb.WriteString("UTC:         " + opts.GeneratedAt.UTC().Format(time.ANSIC) + "\n")
	sb.WriteString("report time: " + t.BaseTime.In(opts.Location).Format("2006-01-02 15") + "\n")
	if !t.Issued.IsZero() {
		sb.WriteString("issued:      " + t.Issued.In(opts.Location).Format("2006-01-02 15:04") + "\n")
	}
	sb.WriteString("Legend\n======\n")
	for _, l := range legend {
		sb.WriteString(l + "\n")
	}
}
