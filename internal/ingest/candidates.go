package ingest

import "time"

// PatchCandidate is a patch extracted from a message but not yet persisted.
type PatchCandidate struct {
	Name        string
	AuthorEmail string
	AuthorName  string
	Date        time.Time
	MsgID       string
	References  []string
	Content     string

	// Set only for patches extracted from a bundle.
	Filename string
	AltID    string

	// DLContent is the entire bundle text, so a download of any one record
	// reproduces the full bundle.
	DLContent string
}

// CommentCandidate is a review comment extracted from a message but not yet
// persisted.
type CommentCandidate struct {
	AuthorEmail string
	AuthorName  string
	Date        time.Time
	Content     string
	MsgID       string
	References  []string
}
