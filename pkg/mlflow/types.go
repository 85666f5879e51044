package mlflow

// Types in this file mirror the JSON shapes returned by the tracking
// server's REST API 2.0. All timestamps are epoch milliseconds, exactly as
// the wire carries them.

// LifecycleStage values for experiments and runs.
const (
	LifecycleStageActive  = "active"
	LifecycleStageDeleted = "deleted"
)

// RunStatus is the server-side status of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusScheduled RunStatus = "SCHEDULED"
	RunStatusFinished  RunStatus = "FINISHED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusKilled    RunStatus = "KILLED"
)

// Terminal reports whether the status is a final state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusFinished, RunStatusFailed, RunStatusKilled:
		return true
	}
	return false
}

// ViewType selects which lifecycle stages search operations return.
type ViewType string

const (
	ViewActiveOnly  ViewType = "ACTIVE_ONLY"
	ViewDeletedOnly ViewType = "DELETED_ONLY"
	ViewAll         ViewType = "ALL"
)

// Experiment is a named collection of runs.
type Experiment struct {
	ExperimentID     string          `json:"experiment_id"`
	Name             string          `json:"name"`
	ArtifactLocation string          `json:"artifact_location,omitempty"`
	LifecycleStage   string          `json:"lifecycle_stage,omitempty"`
	LastUpdateTime   int64           `json:"last_update_time,omitempty"`
	CreationTime     int64           `json:"creation_time,omitempty"`
	Tags             []ExperimentTag `json:"tags,omitempty"`
}

// ExperimentTag is a key-value annotation on an experiment.
type ExperimentTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Run combines run metadata with its logged data.
type Run struct {
	Info RunInfo `json:"info"`
	Data RunData `json:"data"`
}

// RunInfo is the metadata section of a run.
type RunInfo struct {
	RunID          string    `json:"run_id"`
	RunUUID        string    `json:"run_uuid,omitempty"` // deprecated alias of RunID, still sent by servers
	RunName        string    `json:"run_name,omitempty"`
	ExperimentID   string    `json:"experiment_id"`
	UserID         string    `json:"user_id,omitempty"`
	Status         RunStatus `json:"status,omitempty"`
	StartTime      int64     `json:"start_time,omitempty"`
	EndTime        int64     `json:"end_time,omitempty"`
	ArtifactURI    string    `json:"artifact_uri,omitempty"`
	LifecycleStage string    `json:"lifecycle_stage,omitempty"`
}

// RunData holds the metrics, params, and tags logged to a run. Metrics
// carry the latest logged value per key; full series come from
// GetMetricHistory.
type RunData struct {
	Metrics []Metric `json:"metrics,omitempty"`
	Params  []Param  `json:"params,omitempty"`
	Tags    []RunTag `json:"tags,omitempty"`
}

// Metric is a single logged metric value.
type Metric struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp,omitempty"`
	Step      int64   `json:"step,omitempty"`
}

// Param is an immutable key-value input to a run.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RunTag is a key-value annotation on a run.
type RunTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FileInfo describes an artifact file or directory.
type FileInfo struct {
	Path     string `json:"path"`
	IsDir    bool   `json:"is_dir"`
	FileSize int64  `json:"file_size,omitempty"`
}

// Permission levels accepted by the experiment permission endpoints.
const (
	PermissionRead          = "READ"
	PermissionEdit          = "EDIT"
	PermissionManage        = "MANAGE"
	PermissionNoPermissions = "NO_PERMISSIONS"
)

// User is an account record from the auth endpoints.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// ExperimentPermission grants a user a permission level on an experiment.
type ExperimentPermission struct {
	ExperimentID string `json:"experiment_id"`
	UserID       int64  `json:"user_id"`
	Permission   string `json:"permission"`
}
