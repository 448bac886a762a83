package measure

import (
	"sync"
	"time"
)

// TransportInfo accumulates the time elements took to arrive from a parent step.
type TransportInfo struct {
	Elapsed time.Duration
	total   int64
}

// Metric accumulates timings of one step.
type Metric struct {
	mu            sync.Mutex
	allTransports map[string]*TransportInfo
	endDuration   time.Duration
	stepElapsed   time.Duration
	total         int64
	concurrent    int
}

func newMetric(concurrent int) *Metric {
	if concurrent < 1 {
		concurrent = 1
	}

	return &Metric{
		allTransports: make(map[string]*TransportInfo),
		concurrent:    concurrent,
	}
}

func (mt *Metric) addDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.stepElapsed += elapsed
}

func (mt *Metric) addTransportDuration(inputStepName string, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.allTransports[inputStepName] == nil {
		mt.allTransports[inputStepName] = &TransportInfo{}
	}
	ch := mt.allTransports[inputStepName]
	ch.Elapsed += elapsed
	ch.total++
}

func (mt *Metric) setTotalDuration(endDuration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.endDuration = endDuration
}

// Total returns the number of elements the step produced.
func (mt *Metric) Total() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

// TotalDuration returns the time from pipeline start to the end of a sink.
func (mt *Metric) TotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.endDuration
}

// AVGDuration returns the mean computation time per element.
func (mt *Metric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.total == 0 {
		return 0
	}

	return round(time.Duration(float64(mt.stepElapsed) / float64(mt.total)))
}

// AVGTransportDuration returns, per parent step, the mean wait per element divided by
// the number of workers.
func (mt *Metric) AVGTransportDuration() map[string]time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	out := make(map[string]time.Duration, len(mt.allTransports))
	for name, ch := range mt.allTransports {
		if ch.total == 0 {
			continue
		}
		out[name] = round(time.Duration(float64(ch.Elapsed) / float64(ch.total) / float64(mt.concurrent)))
	}

	return out
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		return d.Round(time.Hour)
	case d > time.Minute:
		return d.Round(time.Minute)
	case d > time.Second:
		return d.Round(time.Second)
	case d > time.Millisecond:
		return d.Round(time.Millisecond)
	case d > time.Microsecond:
		return d.Round(time.Microsecond)
	}

	return d
}
