package http_test

import (
	"archive/zip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	controller "github.com/m-mizutani/takeout/pkg/controller/http"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/infra/fsys"
	"github.com/m-mizutani/takeout/pkg/infra/store"
	"github.com/m-mizutani/takeout/pkg/usecase"
)

type testEnv struct {
	server  *controller.Server
	stageUC *usecase.StageUseCase
	ws      *usecase.Workspace
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	src := filepath.Join(base, "zips")
	dst := filepath.Join(base, "library")
	gt.NoError(t, os.MkdirAll(src, 0o755))
	gt.NoError(t, os.MkdirAll(dst, 0o755))

	f, err := os.Create(filepath.Join(src, "takeout-001.zip"))
	gt.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"Takeout/IMG_1.jpg":      "img",
		"Takeout/IMG_1.jpg.json": "{}",
		"Takeout/VID_1.mp4":      "vid",
	} {
		w, err := zw.Create(name)
		gt.NoError(t, err)
		_, err = w.Write([]byte(content))
		gt.NoError(t, err)
	}
	gt.NoError(t, zw.Close())
	gt.NoError(t, f.Close())

	native := fsys.NewOS()
	ws := &usecase.Workspace{Archives: native, ArchiveDir: src, Library: native, Root: dst}

	sessionUC := usecase.NewSession(store.NewMemory(), usecase.WithWorkspace(ws, "zips", "library"))
	stageUC := usecase.NewStage(usecase.NewPipeline(ws), sessionUC, nil)

	server, err := controller.NewServer(context.Background(), stageUC, sessionUC)
	gt.NoError(t, err)
	return &testEnv{server: server, stageUC: stageUC, ws: ws}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gt.NoError(t, e.stageUC.Wait(ctx))
}

func TestStatusEndpoint(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/api/status", "")
	gt.Equal(t, w.Code, http.StatusOK)

	var overview model.Overview
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&overview))
	gt.Equal(t, overview.Status, model.ZipStatus{Total: 1, Unpacked: 0, Pending: 1})
	gt.Equal(t, overview.Suggested, model.StageUnpack)
	gt.True(t, overview.Eligible[model.StageUnpack])
	gt.True(t, overview.NextStep != "")
}

func TestSessionEndpoints(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/api/session", "")
	gt.Equal(t, w.Code, http.StatusOK)
	var s model.Session
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&s))
	gt.Equal(t, s.Position, model.StageSelectFolders)

	w = env.do(t, http.MethodPut, "/api/session", `{"zipDirName":"zips","outDirName":"library","pipelinePosition":4}`)
	gt.Equal(t, w.Code, http.StatusOK)
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&s))
	gt.Equal(t, s.Label, "Type Selection")
	gt.False(t, s.SavedAt.IsZero())

	w = env.do(t, http.MethodPut, "/api/session", `{"pipelinePosition":9}`)
	gt.Equal(t, w.Code, http.StatusBadRequest)

	w = env.do(t, http.MethodPut, "/api/session", `{broken`)
	gt.Equal(t, w.Code, http.StatusBadRequest)

	w = env.do(t, http.MethodDelete, "/api/session", "")
	gt.Equal(t, w.Code, http.StatusNoContent)

	w = env.do(t, http.MethodGet, "/api/session", "")
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&s))
	gt.Equal(t, s.Position, model.StageSelectFolders)
}

func TestStageEndpoints(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/api/jobs/current", "")
	gt.Equal(t, w.Code, http.StatusNotFound)

	w = env.do(t, http.MethodPost, "/api/stages/unpack", "")
	gt.Equal(t, w.Code, http.StatusAccepted)
	var job model.Job
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&job))
	gt.Equal(t, job.Action, model.ActionUnpack)
	gt.True(t, job.ID != "")
	env.wait(t)

	w = env.do(t, http.MethodGet, "/api/jobs/current", "")
	gt.Equal(t, w.Code, http.StatusOK)
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&job))
	gt.Equal(t, job.State, model.JobSucceeded)

	w = env.do(t, http.MethodPost, "/api/stages/flatten-images", "")
	gt.Equal(t, w.Code, http.StatusAccepted)
	env.wait(t)

	_, err := os.Stat(filepath.Join(env.ws.ClassDir(model.MediaImage), "IMG_1.jpg"))
	gt.NoError(t, err)

	w = env.do(t, http.MethodPost, "/api/stages/prune", `{"extensions":["json"]}`)
	gt.Equal(t, w.Code, http.StatusBadRequest)

	w = env.do(t, http.MethodPost, "/api/stages/prune", `{"extensions":[".json"],"dry_run":true}`)
	gt.Equal(t, w.Code, http.StatusAccepted)
	env.wait(t)

	w = env.do(t, http.MethodGet, "/api/jobs/current", "")
	var result struct {
		State  model.JobState `json:"state"`
		Result struct {
			Succeeded []string `json:"succeeded"`
			DryRun    bool     `json:"dry_run"`
		} `json:"result"`
	}
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	gt.Equal(t, result.State, model.JobSucceeded)
	gt.True(t, result.Result.DryRun)
	gt.A(t, result.Result.Succeeded).Length(1)

	w = env.do(t, http.MethodPost, "/api/stages/explode", "")
	gt.Equal(t, w.Code, http.StatusNotFound)
}

func TestStageEndpoint_Busy(t *testing.T) {
	env := setup(t)
	release := make(chan struct{})

	runner := usecase.NewJobRunner()
	_, err := runner.Start(context.Background(), model.ActionUnpack, func(ctx context.Context, progress model.ProgressFunc) (any, error) {
		<-release
		return nil, nil
	})
	gt.NoError(t, err)
	defer close(release)

	sessionUC := usecase.NewSession(store.NewMemory(), usecase.WithWorkspace(env.ws, "zips", "library"))
	stageUC := usecase.NewStage(usecase.NewPipeline(env.ws), sessionUC, runner)
	server, err := controller.NewServer(context.Background(), stageUC, sessionUC)
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/stages/collapse", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	gt.Equal(t, w.Code, http.StatusConflict)
	gt.S(t, w.Body.String()).Contains("already running")
}
