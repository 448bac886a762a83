package pipeline_test

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmontp/LocoHub-sub005/pkg/pipeline"
	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/drawer"
	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/measure"
	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/model"
)

func double(_ context.Context, in int) (int, error) {
	return in * 2, nil
}

func TestAddStepOneToOneNilPipe(t *testing.T) {
	t.Parallel()

	_, err := pipeline.AddStepOneToOne(nil, "first step", &model.Step[int]{}, double)
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)

	_, err = pipeline.AddRootStep(nil, "root", intsRoot(1))
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)

	err = pipeline.AddSink(nil, "sink", &model.Step[int]{}, (&collector[int]{}).sink)
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)
}

func TestAddStepOneToOneNilInput(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	_, err = pipeline.AddStepOneToOne[int, int](pipe, "first step", nil, double)
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)

	err = pipeline.AddSink[int](pipe, "sink", nil, (&collector[int]{}).sink)
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)

	require.NoError(t, pipe.Run())
}

func TestAddStepOneToOne(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	step := &model.Step[int]{Output: createInputChan(t, 10)}
	doubled, err := pipeline.AddStepOneToOne(pipe, "double", step, double)
	require.NoError(t, err)

	sink := &collector[int]{}
	require.NoError(t, pipeline.AddSink(pipe, "sink", doubled, sink.sink))

	require.NoError(t, pipe.Run())
	assert.Equal(t, []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}, sink.values())
}

func TestAddStepOneToOneConcurrent(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", intsRoot(100))
	require.NoError(t, err)
	doubled, err := pipeline.AddStepOneToOne(pipe, "double", root, double, pipeline.StepConcurrency[int](4))
	require.NoError(t, err)
	assert.Equal(t, 4, doubled.Details.Concurrent)

	sink := &collector[int]{}
	require.NoError(t, pipeline.AddSink(pipe, "sink", doubled, sink.sink))
	require.NoError(t, pipe.Run())

	want := make([]int, 100)
	for i := range want {
		want[i] = i * 2
	}
	assert.ElementsMatch(t, want, sink.values())
}

func TestAddStepOneToMany(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", intsRoot(4), pipeline.StepBufferSize[int](2))
	require.NoError(t, err)
	split, err := pipeline.AddStepOneToMany(pipe, "split", root, func(_ context.Context, in int) ([]string, error) {
		out := make([]string, in)
		for i := range out {
			out[i] = strconv.Itoa(in)
		}

		return out, nil
	})
	require.NoError(t, err)

	sink := &collector[string]{}
	require.NoError(t, pipeline.AddSink(pipe, "sink", split, sink.sink))
	require.NoError(t, pipe.Run())

	assert.Equal(t, []string{"1", "2", "2", "3", "3", "3"}, sink.values())
}

func TestStepErrorStopsPipeline(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", intsRoot(1000))
	require.NoError(t, err)
	failing, err := pipeline.AddStepOneToOne(pipe, "failing", root, func(_ context.Context, in int) (int, error) {
		if in == 5 {
			return 0, assert.AnError
		}

		return in, nil
	}, pipeline.StepConcurrency[int](3))
	require.NoError(t, err)

	sink := &collector[int]{}
	require.NoError(t, pipeline.AddSink(pipe, "sink", failing, sink.sink))

	err = pipe.Run()
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failing")
	assert.Less(t, len(sink.values()), 1000)
}

func TestSinkErrorStopsPipeline(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New(context.Background())
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", intsRoot(1000))
	require.NoError(t, err)

	calls := 0
	err = pipeline.AddSink(pipe, "sink", root, func(_ context.Context, in int) error {
		calls++
		if in == 2 {
			return assert.AnError
		}

		return nil
	})
	require.NoError(t, err)

	err = pipe.Run()
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, calls)
}

func TestPipelineCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	pipe, err := pipeline.New(ctx)
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", func(ctx context.Context, out chan<- int) error {
		for i := 0; ; i++ {
			if i == 10 {
				cancel()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- i:
			}
		}
	})
	require.NoError(t, err)
	require.NoError(t, pipeline.AddSink(pipe, "sink", root, (&collector[int]{}).sink))

	err = pipe.Run()
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipelineMeasureAndDrawer(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	msr := measure.New(reg)
	var dot bytes.Buffer

	pipe, err := pipeline.New(context.Background(),
		measure.PipelineMeasure(msr),
		drawer.PipelineDrawer(drawer.NewDOTDrawer(&dot), msr),
	)
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "root", intsRoot(10))
	require.NoError(t, err)
	doubled, err := pipeline.AddStepOneToOne(pipe, "double", root, double, pipeline.StepConcurrency[int](2))
	require.NoError(t, err)
	require.NoError(t, pipeline.AddSink(pipe, "sink", doubled, (&collector[int]{}).sink))

	require.NoError(t, pipe.Run())

	assert.Equal(t, []string{"double", "end", "root", "sink", "start"}, msr.Steps())
	assert.EqualValues(t, 10, msr.GetMetric("double").Total())
	assert.EqualValues(t, 10, msr.GetMetric("sink").Total())
	assert.Positive(t, msr.GetMetric("sink").TotalDuration())
	assert.Contains(t, msr.GetMetric("double").AVGTransportDuration(), "root")

	n, err := testutil.GatherAndCount(reg, "pipeline_step_items_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out := dot.String()
	assert.Contains(t, out, "digraph")
	for _, name := range []string{"start", "root", "double", "sink", "end"} {
		assert.Contains(t, out, `"`+name+`"`)
	}
	assert.Contains(t, out, "rankdir")
}
