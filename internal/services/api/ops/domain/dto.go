// Package domain holds the ops API payloads
package domain

import harvester "mediarelay/internal/services/harvester/domain"

// LinkInput asks the link sink to queue one post URL
type LinkInput struct {
	URL    string `json:"url"    validate:"required"`
	Source string `json:"source"`
}

// LinkAccepted names the sentinel that was written
type LinkAccepted struct {
	Sentinel string `json:"sentinel"`
}

// CursorInput starts tracking a remote source
type CursorInput struct {
	Platform   string `json:"platform"    validate:"required"`
	UserID     string `json:"user_id"     validate:"required"`
	Domain     string `json:"domain"      validate:"required"`
	AuthorName string `json:"author_name"`
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// StatusResponse reports what each pipeline stage in this process is doing
type StatusResponse struct {
	Service   string           `json:"service"`
	Version   string           `json:"version"`
	Started   string           `json:"started"`
	Uptime    int64            `json:"uptime"`
	Modules   []string         `json:"modules,omitempty"`
	Watcher   string           `json:"watcher,omitempty"`
	Harvester *HarvesterStatus `json:"harvester,omitempty"`
}

// HarvesterStatus summarizes tracked sources and the last completed sweep
type HarvesterStatus struct {
	Sources   int              `json:"sources"`
	LastSweep *harvester.Sweep `json:"last_sweep,omitempty"`
}
