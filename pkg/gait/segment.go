package gait

import (
	"github.com/jmontp/LocoHub-sub005/pkg/errs"
)

// Segmentation is the outcome of cycle detection on one force channel.
type Segmentation struct {
	Cycles []GaitCycle
	// HeelStrikes holds the time of every swing-to-stance transition.
	HeelStrikes []float64
	// Rejected counts heel-strike pairs whose duration fell outside the valid window.
	Rejected int
}

// DetectHeelStrikes returns the indices of the first stance sample after every
// swing-to-stance transition. A sample is in stance when force > threshold.
func DetectHeelStrikes(force []float64, threshold float64) []int {
	var strikes []int
	prev := 0
	for i, f := range force {
		stance := 0
		if f > threshold {
			stance = 1
		}
		if i > 0 && stance-prev == 1 {
			strikes = append(strikes, i)
		}
		prev = stance
	}

	return strikes
}

// Segment detects gait cycles from a force channel and its time vector.
// Fewer than two heel strikes yields an empty segmentation, not an error.
func Segment(force, time []float64, threshold float64) (Segmentation, error) {
	if len(force) != len(time) {
		return Segmentation{}, errs.Structural("force has %d samples but time has %d", len(force), len(time))
	}

	var seg Segmentation
	strikes := DetectHeelStrikes(force, threshold)
	for _, idx := range strikes {
		seg.HeelStrikes = append(seg.HeelStrikes, time[idx])
	}
	if len(strikes) < 2 {
		return seg, nil
	}

	for i := 1; i < len(strikes); i++ {
		start, end := time[strikes[i-1]], time[strikes[i]]
		duration := end - start
		if duration < MinCycleDuration || duration > MaxCycleDuration {
			seg.Rejected++

			continue
		}
		seg.Cycles = append(seg.Cycles, GaitCycle{
			CycleIndex: len(seg.Cycles),
			StartTime:  start,
			EndTime:    end,
		})
	}

	return seg, nil
}

// SegmentTrial segments a trial on its force channel and labels the cycles with the
// trial's subject and task.
func SegmentTrial(trial *Trial, threshold float64) (Segmentation, error) {
	force, err := trial.ForceChannel()
	if err != nil {
		return Segmentation{}, err
	}

	seg, err := Segment(force, trial.Time, threshold)
	if err != nil {
		return Segmentation{}, err
	}
	for i := range seg.Cycles {
		seg.Cycles[i].Subject = trial.Subject
		seg.Cycles[i].Task = trial.Task
	}

	return seg, nil
}
