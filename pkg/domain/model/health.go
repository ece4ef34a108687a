package model

// HealthStatus is the /health response. ActiveJob names the stage action that
// is running, if any.
type HealthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	ActiveJob Action `json:"active_job,omitempty"`
}
