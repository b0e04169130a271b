package types

import (
	"strings"
	"time"
)

const MediaTypePDF = "application/pdf"

// CandidateFile is a file picked by the user that has not been transferred yet.
type CandidateFile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MediaType  string    `json:"type"`
	Handle     string    `json:"-"` // local preview reference, resolved by the blob store
	SelectedAt time.Time `json:"selectedAt"`
}

func (f CandidateFile) IsPDF() bool {
	return strings.EqualFold(f.MediaType, MediaTypePDF)
}

// RejectedFile is a file refused by the selection filter before reaching a session.
type RejectedFile struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}
