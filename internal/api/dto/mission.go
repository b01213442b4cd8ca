package dto

type TaskResponse struct {
	TaskID   int64   `json:"task_id"`
	SiteID   int64   `json:"site_id"`
	SiteName string  `json:"site_name"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	IsFirst  bool    `json:"is_first"`
}

type ListTasksResponse struct {
	MissionID int64          `json:"mission_id"`
	Tasks     []TaskResponse `json:"tasks"`
}

// ErrorResponse carries a human readable message and a stable reason code.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
