package pipeline

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("pipeline must be set")
	ErrInputMustBeSet    = errors.New("input channel must be set")
)

// stageErrors collects the error channel of every stage added to a pipeline. Stages
// are added from the caller's goroutine while Run may already be waiting.
type stageErrors struct {
	mu     sync.Mutex
	stages []stageErr
}

// stageErr is the error channel of one named stage. The channel is closed when the
// stage goroutine returns.
type stageErr struct {
	name string
	c    <-chan error
}

func (s *stageErrors) watch(name string, c <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, stageErr{name: name, c: c})
}

func (s *stageErrors) snapshot() []stageErr {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]stageErr(nil), s.stages...)
}

// mergeErrors fans every stage channel into one, prefixing errors with the stage name.
// The result closes once all stages have closed.
func mergeErrors(stages ...stageErr) <-chan error {
	// one slot per stage: each stage sends at most one error
	out := make(chan error, len(stages))

	var wg sync.WaitGroup
	wg.Add(len(stages))
	for _, st := range stages {
		go func() {
			defer wg.Done()
			if st.c == nil {
				return
			}
			for err := range st.c {
				out <- errors.Wrap(err, st.name)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
