package pipeline_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
	"github.com/couchcryptid/dwml-forecast/internal/observability"
	"github.com/couchcryptid/dwml-forecast/internal/pipeline"
	"github.com/couchcryptid/dwml-forecast/internal/report"
	"github.com/couchcryptid/dwml-forecast/internal/testdata"
)

// fixtureNow is inside the fixture's base hour.
var fixtureNow = testdata.ForecastBaseTime.Add(34*time.Minute + 56*time.Second)

func newTestReporter(clock clockwork.Clock, metrics *observability.Metrics) *pipeline.Reporter {
	return pipeline.NewReporter(pipeline.ReporterConfig{
		WindowHours: domain.DefaultWindowHours,
		Location:    edt,
		Legend:      report.LegendNone,
	}, clock, discardLogger(), metrics)
}

func TestReporter_Generate_Fixture(t *testing.T) {
	metrics := newTestMetrics()
	r := newTestReporter(clockwork.NewFakeClockAt(fixtureNow), metrics)

	res, err := r.Generate(context.Background(), pipeline.Request{Document: testdata.Forecast(t)})
	require.NoError(t, err)

	assert.Equal(t, testdata.ForecastBaseTime, res.BaseTime)
	assert.Equal(t, report.FormatText, res.Format)
	assert.Equal(t, 7, res.Rows)
	assert.Equal(t, domain.Stats{Dropped: 7, SkippedBlocks: 1}, res.Stats)
	assert.True(t, strings.HasPrefix(res.Body, "=========="))
	assert.Contains(t, res.Body, "2015-08-21 08   22  23      31")

	assert.InEpsilon(t, 1.0, counterValue(t, metrics.ReportsGenerated.WithLabelValues("text")), 0.0001)
	assert.InEpsilon(t, 7.0, counterValue(t, metrics.ValuesDropped), 0.0001)
	assert.InEpsilon(t, 1.0, counterValue(t, metrics.SkippedBlocks), 0.0001)
}

func TestReporter_Generate_RequestOverridesDefaults(t *testing.T) {
	r := newTestReporter(clockwork.NewFakeClockAt(fixtureNow), newTestMetrics())

	res, err := r.Generate(context.Background(), pipeline.Request{
		Document: testdata.Forecast(t),
		Format:   report.FormatHTML,
		Legend:   report.LegendBottom,
	})
	require.NoError(t, err)

	assert.Equal(t, report.FormatHTML, res.Format)
	assert.True(t, strings.HasPrefix(res.Body, "<table"))
	assert.Contains(t, res.Body, "UTC:         Fri Aug 21 12:34:56 2015")
}

func TestReporter_Generate_BaseTimeFollowsClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(fixtureNow)
	r := newTestReporter(clock, newTestMetrics())

	clock.Advance(3 * time.Hour)
	res, err := r.Generate(context.Background(), pipeline.Request{Document: testdata.Forecast(t)})
	require.NoError(t, err)

	assert.Equal(t, testdata.ForecastBaseTime.Add(3*time.Hour), res.BaseTime)
	assert.Equal(t, res.BaseTime, r.BaseTime())
	// The 08 EDT max and hourly rows now fall before the window.
	assert.NotContains(t, res.Body, "2015-08-21 08")
	assert.Contains(t, res.Body, "2015-08-21 11")
}

func TestReporter_Generate_RequestBaseTimeOverridesClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(fixtureNow.Add(5 * time.Hour))
	r := newTestReporter(clock, newTestMetrics())

	res, err := r.Generate(context.Background(), pipeline.Request{
		Document: testdata.Forecast(t),
		BaseTime: fixtureNow,
	})
	require.NoError(t, err)

	assert.Equal(t, testdata.ForecastBaseTime, res.BaseTime, "truncated to the hour")
	assert.Contains(t, res.Body, "2015-08-21 08")
}

func TestReporter_Generate_StructuralErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		kind string
		want error
	}{
		{"malformed xml", "<dwml><data>", "malformed_document", domain.ErrMalformedDocument},
		{
			name: "longer value list",
			doc: `<dwml><data>
<time-layout><layout-key>k-p1h-n1-1</layout-key><start-valid-time>2015-08-21T08:00:00-04:00</start-valid-time></time-layout>
<parameters><temperature type="hourly" time-layout="k-p1h-n1-1"><value>1</value><value>2</value></temperature></parameters>
</data></dwml>`,
			kind: "index_out_of_range",
			want: domain.ErrIndexOutOfRange,
		},
		{
			name: "unknown layout",
			doc:  `<dwml><data><parameters><humidity time-layout="k-p1h-n1-1"><value>1</value></humidity></parameters></data></dwml>`,
			kind: "unknown_layout",
			want: domain.ErrUnknownLayout,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := newTestMetrics()
			r := newTestReporter(clockwork.NewFakeClockAt(fixtureNow), metrics)

			res, err := r.Generate(context.Background(), pipeline.Request{Document: []byte(tc.doc)})
			require.ErrorIs(t, err, tc.want)
			assert.Empty(t, res.Body)
			assert.InEpsilon(t, 1.0, counterValue(t, metrics.ReportFailures.WithLabelValues(tc.kind)), 0.0001)
		})
	}
}

func TestReporter_Generate_CancelledContext(t *testing.T) {
	r := newTestReporter(clockwork.NewFakeClockAt(fixtureNow), newTestMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Generate(ctx, pipeline.Request{Document: testdata.Forecast(t)})
	require.ErrorIs(t, err, context.Canceled)
}
