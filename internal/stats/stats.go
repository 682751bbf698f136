// Package stats samples the interpreter's memory behaviour. Sampling is
// observability only: it never changes program semantics, and a failed
// reading degrades to "unavailable" instead of aborting the program.
package stats

import (
	"runtime"
	"time"
)

// Sample is one per-statement observation of the (heap, stack) pair.
type Sample struct {
	Elapsed     time.Duration
	HeapObjects int
	StackFrames int
	HeapBytes   uint64 // interpreter process heap; 0 when unavailable
}

type Recorder struct {
	start   time.Time
	samples []Sample
}

func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

// Record appends one sample. Called by the evaluator after each executed
// statement.
func (r *Recorder) Record(heapObjects, stackFrames int) {
	r.samples = append(r.samples, Sample{
		Elapsed:     time.Since(r.start),
		HeapObjects: heapObjects,
		StackFrames: stackFrames,
		HeapBytes:   readHeapBytes(),
	})
}

func (r *Recorder) Samples() []Sample {
	return r.samples
}

func (r *Recorder) Len() int {
	return len(r.samples)
}

func readHeapBytes() (bytes uint64) {
	defer func() {
		if recover() != nil {
			bytes = 0 // unavailable
		}
	}()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}
