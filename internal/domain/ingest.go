package domain

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"k8s.io/utils/ptr"
)

// scalarField selects the row field a scalar parameter writes to.
type scalarField func(r *Row) **int

var (
	windSpeedField   scalarField = func(r *Row) **int { return &r.WindSpeed }
	windDirField     scalarField = func(r *Row) **int { return &r.WindDir }
	cloudAmountField scalarField = func(r *Row) **int { return &r.CloudAmount }
	snowAmountField  scalarField = func(r *Row) **int { return &r.SnowAmount }
	humidityField    scalarField = func(r *Row) **int { return &r.Humidity }
)

// ingestor writes parameter values into a stamped table.
type ingestor struct {
	table   *Table
	catalog *Catalog
	logger  *slog.Logger
}

// IngestParameters writes one <parameters> element into the table. Order of
// blocks does not matter; the first structural error aborts.
func IngestParameters(t *Table, c *Catalog, p Parameters, logger *slog.Logger) error {
	in := &ingestor{table: t, catalog: c, logger: logger}
	return in.parameters(p)
}

func (in *ingestor) parameters(p Parameters) error {
	for _, s := range p.Temperatures {
		if err := in.temperature(s); err != nil {
			return err
		}
	}

	scalars := []struct {
		element string
		series  []ValueSeries
		field   scalarField
	}{
		{"wind-speed", p.WindSpeeds, windSpeedField},
		{"direction", p.Directions, windDirField},
		{"cloud-amount", p.CloudAmounts, cloudAmountField},
		{"precipitation", p.Precipitation, snowAmountField},
		{"humidity", p.Humidity, humidityField},
	}
	for _, sc := range scalars {
		for _, s := range sc.series {
			if err := in.scalar(sc.element, s, sc.field); err != nil {
				return err
			}
		}
	}

	for _, w := range p.Weather {
		if err := in.weather(w); err != nil {
			return err
		}
	}
	return nil
}

// temperature ingests one <temperature> block into the slot of its kind.
func (in *ingestor) temperature(s ValueSeries) error {
	kind := ParseTemperatureKind(s.Type)
	if kind == TemperatureUnrecognized {
		in.logger.Warn("unrecognized temperature kind, skipping block",
			"kind", s.Type,
			"layout", s.TimeLayout,
		)
		in.table.Stats.SkippedBlocks++
		return nil
	}

	element := "temperature/" + kind.String()
	return in.scalar(element, s, kind.slot)
}

// scalar ingests a block of integer readings into field.
func (in *ingestor) scalar(element string, s ValueSeries, field scalarField) error {
	tl, err := in.catalog.Lookup(s.TimeLayout)
	if err != nil {
		return fmt.Errorf("%s: %w", element, err)
	}

	return pairIntervals(tl, len(s.Values), element, func(i int, iv TimeInterval) {
		row := in.table.Row(iv.Start)
		if row == nil {
			in.table.Stats.Dropped++
			return
		}

		v := s.Values[i]
		if v.Blank() {
			return
		}
		n, ok := parseReading(v.Text)
		if !ok {
			in.logger.Warn("non-numeric value, leaving blank",
				"element", element,
				"layout", tl.Key,
				"value", v.Text,
			)
			in.table.Stats.InvalidValues++
			return
		}
		*field(row) = ptr.To(n)
	})
}

// weather composes the condition text of each interval.
func (in *ingestor) weather(w Weather) error {
	tl, err := in.catalog.Lookup(w.TimeLayout)
	if err != nil {
		return fmt.Errorf("weather: %w", err)
	}

	return pairIntervals(tl, len(w.Conditions), "weather", func(i int, iv TimeInterval) {
		row := in.table.Row(iv.Start)
		if row == nil {
			in.table.Stats.Dropped++
			return
		}

		text := strings.TrimLeft(ComposeConditions(w.Conditions[i].Values), " ,")
		if text == "" {
			return
		}
		row.Weather = ptr.To(text)
	})
}

// pairIntervals walks n values and the layout's intervals in lockstep.
// More values than intervals fails before anything is written; fewer values
// simply stop early.
func pairIntervals(tl *TimeLayout, n int, element string, fn func(i int, iv TimeInterval)) error {
	if n > len(tl.Intervals) {
		return fmt.Errorf("%w: %s has %d values for layout %s with %d intervals",
			ErrIndexOutOfRange, element, n, tl.Key, len(tl.Intervals))
	}
	for i := range n {
		fn(i, tl.Intervals[i])
	}
	return nil
}

// parseReading parses an integer reading. Decimal text is truncated toward zero.
func parseReading(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
