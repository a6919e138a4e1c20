package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
	"github.com/couchcryptid/dwml-forecast/internal/report"
)

// Message header names understood by ReportTransformer.
const (
	HeaderFormat   = "format"
	HeaderLegend   = "legend"
	HeaderBaseTime = "base_time"
	HeaderRows     = "rows"
)

// ReportTransformer implements Transformer by rendering each document with a
// Generator. The format and legend headers of the source message override
// the generator's defaults.
type ReportTransformer struct {
	generator Generator
}

// NewTransformer creates a ReportTransformer.
func NewTransformer(g Generator) *ReportTransformer {
	return &ReportTransformer{generator: g}
}

func (t *ReportTransformer) Transform(ctx context.Context, raw domain.RawDocument) (domain.OutputReport, error) {
	format, err := report.ParseFormat(raw.Headers[HeaderFormat])
	if err != nil {
		return domain.OutputReport{}, err
	}
	legend, err := report.ParseLegendPosition(raw.Headers[HeaderLegend])
	if err != nil {
		return domain.OutputReport{}, err
	}
	// Absent headers keep the generator's defaults.
	if raw.Headers[HeaderFormat] == "" {
		format = ""
	}
	if raw.Headers[HeaderLegend] == "" {
		legend = ""
	}

	res, err := t.generator.Generate(ctx, Request{
		Document: raw.Value,
		Format:   format,
		Legend:   legend,
	})
	if err != nil {
		return domain.OutputReport{}, err
	}

	return domain.OutputReport{
		Key:   raw.Key,
		Value: []byte(res.Body),
		Headers: map[string]string{
			HeaderFormat:   string(res.Format),
			HeaderBaseTime: res.BaseTime.UTC().Format(time.RFC3339),
			HeaderRows:     strconv.Itoa(res.Rows),
		},
	}, nil
}
