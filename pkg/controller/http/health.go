package http

import (
	"net/http"

	"github.com/m-mizutani/takeout/pkg/domain/interfaces"
	"github.com/m-mizutani/takeout/pkg/domain/model"
	"github.com/m-mizutani/takeout/pkg/domain/types"
)

// healthHandler reports liveness and the running stage job
func healthHandler(stageUC interfaces.StageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: "takeout",
			Version: types.Version,
		}
		if stageUC != nil {
			if job := stageUC.Current(); job != nil && job.State == model.JobRunning {
				status.ActiveJob = job.Action
			}
		}
		writeJSON(w, r, http.StatusOK, status)
	}
}
