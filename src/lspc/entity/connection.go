package entity

// Connection routes a file to the session that serves it.
type Connection struct {
	SessionID string `json:"sessionId"`
	Language  string `json:"language"`
	RootPath  string `json:"rootPath"`
}
