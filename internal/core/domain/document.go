package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
	StatusSuperseded DocumentStatus = "superseded"
)

// Document is an ingested source file. Content is immutable once stored;
// re-uploading a changed file supersedes the prior row instead of mutating it.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	SHA256      string         `json:"sha256"`
	PageCount   int            `json:"page_count,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PageText is one page of extracted text. Extractors without a page notion
// (plain text, spreadsheets) emit a single page numbered 1.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}
