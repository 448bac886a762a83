package gait_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmontp/LocoHub-sub005/pkg/gait"
)

func TestClassifyTask(t *testing.T) {
	t.Parallel()

	assert.Equal(t, gait.ClassGait, gait.ClassifyTask("level_walking"))
	assert.Equal(t, gait.ClassGait, gait.ClassifyTask("stair_ascent"))
	assert.Equal(t, gait.ClassGait, gait.ClassifyTask("Running"))
	assert.Equal(t, gait.ClassBilateral, gait.ClassifyTask("sit_to_stand"))
	assert.Equal(t, gait.ClassBilateral, gait.ClassifyTask("weighted_squat"))
	assert.Equal(t, gait.ClassGait, gait.ClassifyTask("hopping"))
	assert.Equal(t, "bilateral", gait.ClassBilateral.String())
}

func TestNewChainRejectsCycle(t *testing.T) {
	t.Parallel()

	_, err := gait.NewChain(
		gait.Link{Parent: "a", Child: "b", Joint: "j1", Sign: 1},
		gait.Link{Parent: "b", Child: "a", Joint: "j2", Sign: 1},
	)
	assert.Error(t, err)
}

func TestChainStopsAtMissingJoint(t *testing.T) {
	t.Parallel()

	chain, err := gait.NewChain(gait.DefaultLinks()...)
	require.NoError(t, err)
	assert.Equal(t, "pelvis", chain.Root())
	assert.Equal(t, []string{"thigh", "shank", "foot"}, chain.Segments())

	angles := chain.Evaluate([]float64{1}, func(joint string) ([]float64, bool) {
		if joint == "hip_flexion" {
			return []float64{2}, true
		}

		return nil, false
	})
	assert.Equal(t, map[string][]float64{"thigh": {3}}, angles)
}
