package usecase

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// Observation is the live tree state the cursor is derived from.
type Observation struct {
	SourceSelected      bool
	DestinationSelected bool
	Status              model.ZipStatus
}

// Observe suggests a stage from the tree alone. A source without archives
// stays at the unpack stage: there is nothing to flatten yet.
func Observe(obs Observation) model.Stage {
	if !obs.SourceSelected || !obs.DestinationSelected {
		return model.StageSelectFolders
	}
	if obs.Status.Complete() {
		return model.StageFlatten
	}
	return model.StageUnpack
}

// Advance never moves the cursor backwards. A nil cursor starts at the
// observed stage.
func Advance(cur *model.Session, obs Observation) model.Stage {
	observed := Observe(obs)
	if cur == nil || !cur.Position.Valid() {
		return observed
	}
	return max(cur.Position, observed)
}

// Enter positions the cursor at stage on demand and stamps it.
func Enter(cur model.Session, stage model.Stage, now time.Time) (model.Session, error) {
	if !stage.Valid() {
		return cur, goerr.New("invalid pipeline stage",
			goerr.T(types.ErrTagConfiguration),
			goerr.V("stage", int(stage)))
	}
	cur.Position = stage
	cur.Label = stage.Label()
	cur.SavedAt = now
	return cur, nil
}

// Eligible lists which stages can be started given the tree. It never looks
// at the stored cursor.
func Eligible(obs Observation) map[model.Stage]bool {
	both := obs.SourceSelected && obs.DestinationSelected
	return map[model.Stage]bool{
		model.StageSelectFolders:  true,
		model.StageUnpack:         both && obs.Status.Total > 0,
		model.StageFlatten:        obs.DestinationSelected,
		model.StageTypeSelection:  obs.DestinationSelected,
		model.StageCleanLeftovers: obs.DestinationSelected,
	}
}

// NextStep is the guidance shown for a stage.
func NextStep(stage model.Stage) string {
	switch stage {
	case model.StageSelectFolders:
		return "Pick the archive source folder and the library destination folder."
	case model.StageUnpack:
		return "Unpack the pending archives, then validate the extracted folders."
	case model.StageFlatten:
		return "Move photos and videos into the flat library folders."
	case model.StageTypeSelection:
		return "Review the remaining file types and choose extensions to delete."
	case model.StageCleanLeftovers:
		return "Delete unwanted extensions and remove empty folders."
	default:
		return ""
	}
}
