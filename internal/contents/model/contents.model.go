package model

import "encoding/json"

const (
	ServiceURL = "/api/contents"

	TypeNotebook = "notebook"
	FormatJSON   = "json"

	CheckpointID       = "checkpoint"
	CheckpointModified = "2020-03-15T13:51:59.816052Z"

	// Timestamps reported for the bundled notebooks, which have no write history.
	DefaultCreated  = "2020-03-18T18:41:01.243007Z"
	DefaultModified = "2020-03-18T18:41:01.243007Z"
)

// ContentModel mirrors a notebook server's contents resource.
type ContentModel struct {
	Name         string          `json:"name"`
	Path         string          `json:"path"`
	LastModified string          `json:"last_modified"`
	Created      string          `json:"created"`
	Content      json.RawMessage `json:"content"`
	Format       string          `json:"format"`
	Mimetype     string          `json:"mimetype"`
	Size         int             `json:"size"`
	Writable     bool            `json:"writable"`
	Type         string          `json:"type"`
}

type Checkpoint struct {
	ID           string `json:"id"`
	LastModified string `json:"last_modified"`
}

// DefaultCheckpoints is the single checkpoint reported for every file.
func DefaultCheckpoints() []Checkpoint {
	return []Checkpoint{{ID: CheckpointID, LastModified: CheckpointModified}}
}
