package domain

import (
	"context"
	"time"
)

// RawDocument is an undecoded DWML document taken from the source topic.
type RawDocument struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputReport is a rendered report destined for the sink topic.
type OutputReport struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
