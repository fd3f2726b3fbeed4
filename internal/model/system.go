package model

// RunStage names a step of a fetch cycle.
type RunStage string

// Fetch cycle stages in the order a successful cycle visits them.
const (
	StagePending     RunStage = "pending"
	StageValidating  RunStage = "validating"
	StageRequesting  RunStage = "requesting"
	StageNormalizing RunStage = "normalizing"
	StagePersisting  RunStage = "persisting"
	StageDone        RunStage = "done"
	StageFailed      RunStage = "failed"
)

// RunReport is what a manually triggered cycle returns to the caller.
type RunReport struct {
	RateTypeID string    `json:"rateTypeId"`
	Stage      RunStage  `json:"stage"`
	Inserted   int       `json:"inserted"`
	Duplicates int       `json:"duplicates"`
	NotFound   int       `json:"notFound"`
	Result     RunResult `json:"result"`
}
