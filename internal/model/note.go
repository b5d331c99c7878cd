package model

// Note is the read model this core needs from the surrounding application:
// title for context labels, workspace scoping, archived flag, owner for the
// resync job. Full note CRUD lives outside this service.
type Note struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	CreatedBy   string `json:"created_by"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsArchived  bool   `json:"is_archived"`
	Ctime       int64  `json:"ctime"`
	Mtime       int64  `json:"mtime"`
}
