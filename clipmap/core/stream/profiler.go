package stream

// Profiler is the minimal scope-timing/counter sink Controller.Update
// reports its per-stage timings and queue-depth counters through.
// Structurally compatible with the root package's Profiler so any
// implementation of one satisfies the other without an import cycle
// (stream cannot import the root clipmap package, which itself imports
// stream to build World).
type Profiler interface {
	BeginScope(name string)
	EndScope(name string)
	SetCount(name string, count int64)
}

type nopProfiler struct{}

func (nopProfiler) BeginScope(string)      {}
func (nopProfiler) EndScope(string)        {}
func (nopProfiler) SetCount(string, int64) {}
