package domain

import "time"

// DatasetEvent announces that the chat dataset has been replaced
type DatasetEvent struct {
	BatchID    string    `json:"batch_id"`
	FileName   string    `json:"file_name,omitempty"`
	Rows       int       `json:"rows"`
	ArchiveURL string    `json:"archive_url,omitempty"`
	ImportedAt time.Time `json:"imported_at"`
}
