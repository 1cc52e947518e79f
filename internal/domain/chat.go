package domain

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage represents one entry in the session's message log.
// The log is append-only; entries are never mutated after insertion.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Sources   []Source  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Source is a citation pointing at an ingested document.
type Source struct {
	Filename string `json:"filename"`
	PDFPath  string `json:"pdf_path,omitempty"`
}

// Previewable reports whether the source can be opened in the PDF preview.
func (s Source) Previewable() bool {
	return s.PDFPath != ""
}

// SourceList decodes the backend's sources array, which has shipped in two
// shapes over time: plain filename strings and {filename, pdf_path} objects.
// Entries that are neither, or that carry no filename, are dropped.
type SourceList []Source

func (l *SourceList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an array at all: treat as no sources rather than failing the
		// whole chat response.
		*l = nil
		return nil
	}

	out := make([]Source, 0, len(raw))
	for _, entry := range raw {
		var name string
		if err := json.Unmarshal(entry, &name); err == nil {
			if name != "" {
				out = append(out, Source{Filename: name})
			}
			continue
		}

		var src Source
		if err := json.Unmarshal(entry, &src); err == nil && src.Filename != "" {
			out = append(out, src)
		}
	}

	*l = out
	return nil
}

// ChatRequest is the request to send a chat message.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the backend's answer to a chat request.
type ChatResponse struct {
	Answer  string     `json:"answer"`
	Sources SourceList `json:"sources,omitempty"`
}
