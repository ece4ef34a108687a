package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// SessionHandler serves the pipeline cursor and the live status
type SessionHandler struct {
	sessionUC interfaces.SessionUseCase
}

// Status returns the archive status, the stored cursor and stage eligibility
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	overview, err := h.sessionUC.Overview(r.Context())
	if err != nil {
		writeError(w, r, err, errorStatus(err))
		return
	}
	writeJSON(w, r, http.StatusOK, overview)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionUC.Load(r.Context())
	if err != nil {
		writeError(w, r, err, errorStatus(err))
		return
	}
	writeJSON(w, r, http.StatusOK, session)
}

func (h *SessionHandler) Put(w http.ResponseWriter, r *http.Request) {
	var session model.Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, r, goerr.Wrap(err, "invalid session payload", goerr.T(types.ErrTagConfiguration)), http.StatusBadRequest)
		return
	}

	saved, err := h.sessionUC.Save(r.Context(), &session)
	if err != nil {
		writeError(w, r, err, errorStatus(err))
		return
	}
	writeJSON(w, r, http.StatusOK, saved)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionUC.Reset(r.Context()); err != nil {
		writeError(w, r, err, errorStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
