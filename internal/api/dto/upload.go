package dto

// FileAck reports the outcome of one uploaded photo. A failed save is
// reported per file so a partial upload still yields a response.
type FileAck struct {
	Field string `json:"field"`
	Saved bool   `json:"saved"`
	Error string `json:"error,omitempty"`
}

type UploadResponse struct {
	Files []FileAck `json:"files"`
}
