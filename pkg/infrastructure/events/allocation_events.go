package events

import "time"

const (
	StageStartedEvent      = "stage.started"
	StageSolvedEvent       = "stage.solved"
	StageFailedEvent       = "stage.failed"
	PipelineCompletedEvent = "pipeline.completed"
)

// AllEventTypes lists every event type an allocation run emits
var AllEventTypes = []string{
	StageStartedEvent,
	StageSolvedEvent,
	StageFailedEvent,
	PipelineCompletedEvent,
}

type StageStarted struct {
	Scenario string `json:"scenario"`
	Stage    string `json:"stage"`
}

type StageSolved struct {
	Stage       string        `json:"stage"`
	Status      string        `json:"status"`
	Objective   float64       `json:"objective"`
	Variables   int           `json:"variables"`
	Constraints int           `json:"constraints"`
	Nodes       int           `json:"nodes"`
	Duration    time.Duration `json:"duration"`
}

type StageFailed struct {
	Stage     string   `json:"stage"`
	Error     string   `json:"error"`
	Conflicts []string `json:"conflicts,omitempty"`
}

type PipelineCompleted struct {
	Scenario string        `json:"scenario"`
	Stages   int           `json:"stages"`
	Duration time.Duration `json:"duration"`
}

func NewStageStartedEvent(runID, scenario, stage string) Event {
	return NewEvent(StageStartedEvent, runID, StageStarted{Scenario: scenario, Stage: stage})
}

func NewStageSolvedEvent(runID string, solved StageSolved) Event {
	return NewEvent(StageSolvedEvent, runID, solved)
}

func NewStageFailedEvent(runID, stage string, err error, conflicts []string) Event {
	return NewEvent(StageFailedEvent, runID, StageFailed{
		Stage:     stage,
		Error:     err.Error(),
		Conflicts: conflicts,
	})
}

func NewPipelineCompletedEvent(runID, scenario string, stages int, duration time.Duration) Event {
	return NewEvent(PipelineCompletedEvent, runID, PipelineCompleted{
		Scenario: scenario,
		Stages:   stages,
		Duration: duration,
	})
}
