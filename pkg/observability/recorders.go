package observability

import "time"

// OperationRecorder is implemented by Collector and Metrics
type OperationRecorder interface {
	RecordOperation(kind, name string, duration time.Duration, err error)
	RecordSnapshot(reason string)
}

// Fanout forwards every observation to each recorder in turn
type Fanout []OperationRecorder

// RecordOperation implements the bus recorder interfaces
func (f Fanout) RecordOperation(kind, name string, duration time.Duration, err error) {
	for _, r := range f {
		r.RecordOperation(kind, name, duration, err)
	}
}

// RecordSnapshot counts a written snapshot on every recorder
func (f Fanout) RecordSnapshot(reason string) {
	for _, r := range f {
		r.RecordSnapshot(reason)
	}
}
