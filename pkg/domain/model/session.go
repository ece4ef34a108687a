package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// Stage is a position of the pipeline cursor.
type Stage int

const (
	StageSelectFolders  Stage = 1
	StageUnpack         Stage = 2
	StageFlatten        Stage = 3
	StageTypeSelection  Stage = 4
	StageCleanLeftovers Stage = 5
)

// Stages lists every valid stage in order.
var Stages = []Stage{
	StageSelectFolders,
	StageUnpack,
	StageFlatten,
	StageTypeSelection,
	StageCleanLeftovers,
}

func (s Stage) Valid() bool {
	return s >= StageSelectFolders && s <= StageCleanLeftovers
}

// Label is the human readable stage name stored next to the position.
func (s Stage) Label() string {
	switch s {
	case StageSelectFolders:
		return "Select Folders"
	case StageUnpack:
		return "Unpack"
	case StageFlatten:
		return "Flatten"
	case StageTypeSelection:
		return "Type Selection"
	case StageCleanLeftovers:
		return "Clean Leftovers"
	default:
		return "Unknown"
	}
}

// Session is the persisted pipeline cursor. It is advisory: the tree remains
// the source of truth and a lost session is recomputed from it.
type Session struct {
	ZipDirName string    `json:"zipDirName" firestore:"zipDirName"`
	OutDirName string    `json:"outDirName" firestore:"outDirName"`
	Position   Stage     `json:"pipelinePosition" firestore:"pipelinePosition"`
	Label      string    `json:"pipelineLabel" firestore:"pipelineLabel"`
	SavedAt    time.Time `json:"savedAt" firestore:"savedAt"`
}

// Validate checks the position and fills the label from it.
func (s *Session) Validate() error {
	if !s.Position.Valid() {
		return goerr.New("invalid pipeline position",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("position", int(s.Position)))
	}
	s.Label = s.Position.Label()
	return nil
}

// Overview combines live tree state with the stored cursor.
type Overview struct {
	Status    ZipStatus      `json:"status"`
	Session   *Session       `json:"session,omitempty"`
	Suggested Stage          `json:"suggested"`
	Eligible  map[Stage]bool `json:"eligible"`
	NextStep  string         `json:"next_step"`
}
