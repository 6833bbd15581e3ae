package challenge

// TaskKind identifies one of the required daily tasks.
type TaskKind string

const (
	TaskWorkout1      TaskKind = "WORKOUT_1"
	TaskWorkout2      TaskKind = "WORKOUT_2"
	TaskWaterIntake   TaskKind = "WATER_INTAKE"
	TaskReading       TaskKind = "READING"
	TaskHealthyDiet   TaskKind = "HEALTHY_DIET"
	TaskSleepGoal     TaskKind = "SLEEP_GOAL"
	TaskProgressPhoto TaskKind = "PROGRESS_PHOTO"
)

// TaskSpec carries the display metadata for one task kind.
type TaskSpec struct {
	Kind          TaskKind
	Label         string
	RequiresNotes bool
}

// catalog is the single source of truth for which tasks exist. Every
// component that enumerates or validates kinds goes through Tasks or
// IsValidKind instead of re-listing the constants.
var catalog = []TaskSpec{
	{Kind: TaskWorkout1, Label: "First workout", RequiresNotes: true},
	{Kind: TaskWorkout2, Label: "Second workout", RequiresNotes: true},
	{Kind: TaskWaterIntake, Label: "Drink 3 liters of water"},
	{Kind: TaskReading, Label: "Read 10 pages of non-fiction"},
	{Kind: TaskHealthyDiet, Label: "Eat healthy"},
	{Kind: TaskSleepGoal, Label: "8 hours of sleep"},
	{Kind: TaskProgressPhoto, Label: "Progress photo"},
}

// Tasks returns the ordered task catalog.
func Tasks() []TaskSpec {
	out := make([]TaskSpec, len(catalog))
	copy(out, catalog)
	return out
}

// Kinds returns the catalog's task kinds in display order.
func Kinds() []TaskKind {
	out := make([]TaskKind, len(catalog))
	for i, spec := range catalog {
		out[i] = spec.Kind
	}
	return out
}

// IsValidKind reports whether k names a task in the catalog.
func IsValidKind(k TaskKind) bool {
	for _, spec := range catalog {
		if spec.Kind == k {
			return true
		}
	}
	return false
}

// RequiresNotes reports whether completions of k carry a free-text
// note. True only for the workout kinds.
func RequiresNotes(k TaskKind) bool {
	for _, spec := range catalog {
		if spec.Kind == k {
			return spec.RequiresNotes
		}
	}
	return false
}
