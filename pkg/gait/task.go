package gait

import "strings"

// TaskClass tells how the two limbs relate during a task.
type TaskClass int

const (
	// ClassGait tasks alternate limbs with a half-cycle offset.
	ClassGait TaskClass = iota
	// ClassBilateral tasks move both limbs together.
	ClassBilateral
)

func (c TaskClass) String() string {
	if c == ClassBilateral {
		return "bilateral"
	}

	return "gait"
}

var knownTasks = map[string]TaskClass{
	"level_walking":   ClassGait,
	"incline_walking": ClassGait,
	"decline_walking": ClassGait,
	"stair_ascent":    ClassGait,
	"stair_descent":   ClassGait,
	"run":             ClassGait,
	"running":         ClassGait,
	"sit_to_stand":    ClassBilateral,
	"stand_to_sit":    ClassBilateral,
	"squat":           ClassBilateral,
	"squats":          ClassBilateral,
	"jump":            ClassBilateral,
	"jumps":           ClassBilateral,
	"drop_jump":       ClassBilateral,
}

// ClassifyTask returns the limb relation of a task. Unlisted tasks are matched on
// keywords and default to gait.
func ClassifyTask(task string) TaskClass {
	name := strings.ToLower(strings.TrimSpace(task))
	if class, ok := knownTasks[name]; ok {
		return class
	}
	for _, kw := range []string{"sit", "squat", "jump"} {
		if strings.Contains(name, kw) {
			return ClassBilateral
		}
	}

	return ClassGait
}
