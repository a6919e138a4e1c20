// Package testdata embeds DWML fixtures shared by package tests.
package testdata

import (
	_ "embed"
	"testing"
	"time"
)

//go:embed forecast.xml
var forecast []byte

// ForecastBaseTime is the hour the forecast fixture is meant to be read at:
// 2015-08-21 08:00 EDT.
var ForecastBaseTime = time.Date(2015, time.August, 21, 12, 0, 0, 0, time.UTC)

// Forecast returns a copy of a small NDFD time-series document for one point
// with max/min/hourly/apparent temperatures, wind, clouds, humidity, snow and
// weather conditions.
func Forecast(t testing.TB) []byte {
	t.Helper()
	out := make([]byte, len(forecast))
	copy(out, forecast)
	return out
}
