package pipeline_test

import (
	"context"
	"sync"
	"testing"
)

func intsRoot(total int) func(ctx context.Context, out chan<- int) error {
	return func(ctx context.Context, out chan<- int) error {
		for i := 0; i < total; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- i:
			}
		}

		return nil
	}
}

func createInputChan(t *testing.T, total int) chan int {
	t.Helper()
	inputChan := make(chan int)
	go func() {
		defer close(inputChan)
		for i := 0; i < total; i++ {
			inputChan <- i
		}
	}()

	return inputChan
}

type collector[T any] struct {
	mu  sync.Mutex
	got []T
}

func (c *collector[T]) sink(_ context.Context, in T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, in)

	return nil
}

func (c *collector[T]) values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]T(nil), c.got...)
}
