package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod = "method"
	AttrPath   = "path"
	AttrStatus = "status"
	AttrStage  = "stage"
)

// Stage labels for simulation metrics.
const (
	StageHalf   = "half"
	StageWindow = "window"
	StageSeason = "season"
)
