package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// layoutKeyRe matches NDFD layout keys such as "k-p24h-n7-1":
// period hours, interval count and sequence number.
var layoutKeyRe = regexp.MustCompile(`^k-p(\d+)h-n(\d+)-(\d+)$`)

// validTimeLayout is the DWML timestamp once the offset colon is removed,
// e.g. "2015-08-21T08:00:00-0400". Z0700 also accepts a literal "Z".
const validTimeLayout = "2006-01-02T15:04:05Z0700"

// TimeInterval is one validity interval of a layout. End is zero when the
// layout does not declare end times.
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

// TimeLayout is a parsed <time-layout>. Intervals are positional: the i-th
// interval belongs to the i-th value of every parameter that references Key.
type TimeLayout struct {
	Key            string
	PeriodHours    int
	IntervalCount  int
	SequenceNumber int
	Intervals      []TimeInterval
}

// ParseLayoutKey splits a layout key into its period, count and sequence number.
func ParseLayoutKey(key string) (period, count, seq int, err error) {
	m := layoutKeyRe.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedLayoutKey, key)
	}

	nums := make([]int, 3)
	for i, s := range m[1:] {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q: %w", ErrMalformedLayoutKey, key, convErr)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// ParseValidTime parses a DWML start/end-valid-time. The colon inside the UTC
// offset ("-04:00") is removed before parsing.
func ParseValidTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(validTimeLayout, isoizeOffset(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	return t, nil
}

// isoizeOffset turns "...-04:00" into "...-0400". Other forms pass through.
func isoizeOffset(s string) string {
	n := len(s)
	if n < 6 || s[n-3] != ':' {
		return s
	}
	if sign := s[n-6]; sign != '+' && sign != '-' {
		return s
	}
	return s[:n-3] + s[n-2:]
}

// ParseLayout converts a <time-layout> element into a TimeLayout.
func ParseLayout(el TimeLayoutElement) (*TimeLayout, error) {
	key := strings.TrimSpace(el.Key)
	period, count, seq, err := ParseLayoutKey(key)
	if err != nil {
		return nil, err
	}

	if len(el.StartTimes) != count {
		return nil, fmt.Errorf("%w: layout %s declares %d intervals, found %d start times",
			ErrIndexOutOfRange, key, count, len(el.StartTimes))
	}
	if len(el.EndTimes) > count {
		return nil, fmt.Errorf("%w: layout %s declares %d intervals, found %d end times",
			ErrIndexOutOfRange, key, count, len(el.EndTimes))
	}

	intervals := make([]TimeInterval, count)
	for i, s := range el.StartTimes {
		start, err := ParseValidTime(s)
		if err != nil {
			return nil, fmt.Errorf("layout %s start-valid-time %d: %w", key, i, err)
		}
		intervals[i].Start = start
	}
	for i, s := range el.EndTimes {
		end, err := ParseValidTime(s)
		if err != nil {
			return nil, fmt.Errorf("layout %s end-valid-time %d: %w", key, i, err)
		}
		intervals[i].End = end
	}

	return &TimeLayout{
		Key:            key,
		PeriodHours:    period,
		IntervalCount:  count,
		SequenceNumber: seq,
		Intervals:      intervals,
	}, nil
}

// Catalog maps layout keys to parsed layouts. It is built once per document
// and only read afterwards.
type Catalog struct {
	layouts map[string]*TimeLayout
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{layouts: make(map[string]*TimeLayout)}
}

// BuildCatalog parses every time layout of the document.
func BuildCatalog(doc *Document) (*Catalog, error) {
	c := NewCatalog()
	for _, el := range doc.Data.TimeLayouts {
		tl, err := ParseLayout(el)
		if err != nil {
			return nil, err
		}
		c.Register(tl)
	}
	return c, nil
}

// Register adds a layout. A later layout with the same key replaces the earlier one.
func (c *Catalog) Register(tl *TimeLayout) {
	c.layouts[tl.Key] = tl
}

// Lookup returns the layout referenced by a parameter's time-layout attribute.
func (c *Catalog) Lookup(key string) (*TimeLayout, error) {
	tl, ok := c.layouts[strings.TrimSpace(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, key)
	}
	return tl, nil
}

// Len returns the number of registered layouts.
func (c *Catalog) Len() int { return len(c.layouts) }

// Layouts returns the layouts ordered by key.
func (c *Catalog) Layouts() []*TimeLayout {
	out := make([]*TimeLayout, 0, len(c.layouts))
	for _, tl := range c.layouts {
		out = append(out, tl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
