package httpapi

type RunStatus struct {
	LastRunID string `json:"last_run_id"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	Runs      int    `json:"runs"`
	Running   bool   `json:"running"`
}
