package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// Action is a stage operation that can be started as a job.
type Action string

const (
	ActionUnpack        Action = "unpack"
	ActionValidate      Action = "validate"
	ActionFlattenImages Action = "flatten-images"
	ActionFlattenVideos Action = "flatten-videos"
	ActionPrune         Action = "prune"
	ActionCollapse      Action = "collapse"
	ActionReport        Action = "report"
)

// Actions lists every startable action.
var Actions = []Action{
	ActionUnpack,
	ActionValidate,
	ActionFlattenImages,
	ActionFlattenVideos,
	ActionPrune,
	ActionCollapse,
	ActionReport,
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", goerr.New("unknown stage action",
		goerr.T(types.ErrTagConfiguration),
		goerr.V("action", s))
}

// Stage returns the cursor position the action belongs to.
func (a Action) Stage() Stage {
	switch a {
	case ActionUnpack, ActionValidate:
		return StageUnpack
	case ActionFlattenImages, ActionFlattenVideos:
		return StageFlatten
	case ActionReport:
		return StageTypeSelection
	case ActionPrune, ActionCollapse:
		return StageCleanLeftovers
	default:
		return StageSelectFolders
	}
}

// StageParams carries optional parameters of an action.
type StageParams struct {
	Extensions []string `json:"extensions,omitempty"`
	DryRun     bool     `json:"dry_run,omitempty"`
	EXIF       bool     `json:"exif,omitempty"`
	// Reextract lists archive names to extract again over existing targets.
	Reextract []string `json:"reextract,omitempty"`
}

type JobState string

const (
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Job is a stage run started from the interactive surface.
type Job struct {
	ID         string     `json:"id"`
	Action     Action     `json:"action"`
	Stage      Stage      `json:"stage"`
	State      JobState   `json:"state"`
	Progress   Progress   `json:"progress"`
	Result     any        `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
