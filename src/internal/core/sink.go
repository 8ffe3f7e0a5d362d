// FILE: src/internal/core/sink.go
package core

// Sink receives every normalized console event.
// Implementations are called synchronously on the capturing goroutine.
type Sink func(timestamp string, category Category, text string)

// Deliver passes a record to the sink
func (s Sink) Deliver(rec LogRecord) {
	if s != nil {
		s(rec.Timestamp, rec.Category, rec.Text)
	}
}

// Tee fans a record out to every non-nil sink in order
func Tee(sinks ...Sink) Sink {
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return func(timestamp string, category Category, text string) {
		for _, s := range active {
			s(timestamp, category, text)
		}
	}
}

// Recorder is an in-memory sink that keeps every record it receives.
// Tests and embedders that want to inspect captured output use it.
type Recorder struct {
	Records []LogRecord
}

// Sink returns the recorder's sink function
func (r *Recorder) Sink() Sink {
	return func(timestamp string, category Category, text string) {
		r.Records = append(r.Records, LogRecord{Timestamp: timestamp, Category: category, Text: text})
	}
}

// Last returns the most recent record, or the zero record when empty
func (r *Recorder) Last() LogRecord {
	if len(r.Records) == 0 {
		return LogRecord{}
	}
	return r.Records[len(r.Records)-1]
}
