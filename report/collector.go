package report

import (
	"time"
)

type Status string

const (
	StatusScored       Status = "scored"
	StatusSkipped      Status = "skipped"
	StatusInconsistent Status = "inconsistent"
)

type MatchRecord struct {
	Session   string
	Round     int
	Set       int // Free-for-all set, zero otherwise
	Match     int
	Width     int
	Height    int
	Seed      int
	Agents    int
	Status    Status
	Points    float64
	Replay    string // Archived replay path, if any
	StartTime time.Time
	Duration  time.Duration
	Err       string
}

type Collector interface {
	Add(record MatchRecord)
	Records() []MatchRecord
}

type collector struct {
	records []MatchRecord
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Add(record MatchRecord) {
	c.records = append(c.records, record)
}

func (c *collector) Records() []MatchRecord {
	return c.records
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (c *dummyCollector) Add(record MatchRecord)  {}
func (c *dummyCollector) Records() []MatchRecord { return nil }
