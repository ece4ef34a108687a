package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/takeout/pkg/domain/model"
)

func TestTargetName(t *testing.T) {
	gt.Equal(t, model.TargetName("takeout-001.zip"), "takeout-001")
	gt.Equal(t, model.TargetName("Takeout-002.ZIP"), "Takeout-002")
	gt.Equal(t, model.TargetName("notes.txt"), "notes.txt")
	gt.True(t, model.IsArchiveName("a.Zip"))
	gt.False(t, model.IsArchiveName("zip"))
	gt.False(t, model.IsArchiveName("a.zipx"))
}

func TestZipStatus(t *testing.T) {
	s := model.NewZipStatus(3, 1)
	gt.Equal(t, s.Unpacked+s.Pending, s.Total)
	gt.False(t, s.Complete())

	gt.True(t, model.NewZipStatus(2, 2).Complete())
	gt.False(t, model.NewZipStatus(0, 0).Complete())
}

func TestNewProgress(t *testing.T) {
	p := model.NewProgress("unpack", "a.zip", 0, 0)
	gt.Equal(t, p.Total, 0)
	gt.Equal(t, p.Percent, 0)

	p = model.NewProgress("unpack", "a.zip", 1, 0)
	gt.Equal(t, p.Percent, 100)

	p = model.NewProgress("unpack", "a.zip", 1, 4)
	gt.Equal(t, p.Percent, 25)

	var f model.ProgressFunc
	f.Report("noop", "", 1, 1)
}

func TestSession_JSON(t *testing.T) {
	s := model.Session{
		ZipDirName: "zips",
		OutDirName: "library",
		Position:   model.StageFlatten,
	}
	gt.NoError(t, s.Validate())
	gt.Equal(t, s.Label, "Flatten")

	raw, err := json.Marshal(s)
	gt.NoError(t, err)

	var fields map[string]any
	gt.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"zipDirName", "outDirName", "pipelinePosition", "pipelineLabel", "savedAt"} {
		_, ok := fields[key]
		gt.True(t, ok)
	}
	gt.Equal(t, fields["pipelinePosition"], any(float64(3)))

	bad := model.Session{Position: 9}
	gt.Error(t, bad.Validate())
}

func TestValidationReport_Flagged(t *testing.T) {
	r := model.ValidationReport{
		Entries: []model.SizeReport{
			{Name: "a", Archive: "a.zip", Ratio: 1.0},
			{Name: "b", Archive: "b.zip", Ratio: 0.2},
			{Name: "c", Archive: "c.zip"},
			{Name: "d"},
		},
		SizeWarnings: []model.SizeReport{{Name: "b", Archive: "b.zip", Ratio: 0.2}},
		EmptyTargets: []string{"c"},
	}

	gt.Equal(t, r.Flagged(), []string{"b.zip", "c.zip"})
	gt.Equal(t, r.Healthy(), []string{"a.zip"})
}

func TestItemFailure_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(model.ItemFailure{Item: "x", Err: errors.New("boom")})
	gt.NoError(t, err)
	gt.Equal(t, string(raw), `{"item":"x","error":"boom"}`)
}

func TestParseAction(t *testing.T) {
	a, err := model.ParseAction("flatten-videos")
	gt.NoError(t, err)
	gt.Equal(t, a.Stage(), model.StageFlatten)

	gt.Equal(t, model.ActionPrune.Stage(), model.StageCleanLeftovers)
	gt.Equal(t, model.ActionReport.Stage(), model.StageTypeSelection)

	_, err = model.ParseAction("explode")
	gt.Error(t, err)
}
