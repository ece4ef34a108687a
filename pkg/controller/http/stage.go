package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// StageHandler starts pipeline stages and reports the running job
type StageHandler struct {
	stageUC interfaces.StageUseCase
}

// Start runs a stage in the background and answers 202 with the job
func (h *StageHandler) Start(w http.ResponseWriter, r *http.Request) {
	action, err := model.ParseAction(chi.URLParam(r, "stage"))
	if err != nil {
		writeError(w, r, err, http.StatusNotFound)
		return
	}

	var params model.StageParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, goerr.Wrap(err, "invalid stage parameters", goerr.T(types.ErrTagConfiguration)), http.StatusBadRequest)
		return
	}

	job, err := h.stageUC.Start(r.Context(), action, params)
	if err != nil {
		writeError(w, r, err, errorStatus(err))
		return
	}
	writeJSON(w, r, http.StatusAccepted, job)
}

// Current returns the latest job
func (h *StageHandler) Current(w http.ResponseWriter, r *http.Request) {
	job := h.stageUC.Current()
	if job == nil {
		writeError(w, r, goerr.New("no job has been started"), http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, job)
}
