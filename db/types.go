package db

import (
	"time"
)

type (
	AuthorID  int64
	PatchID   int64
	CommentID int64
	StateID   int64
	MsgidID   int64
	BranchID  int64
	AdminID   int64
)

// The six patch states seeded by the first migration. Ingestion only ever
// moves a patch into StateSuperseded; every other transition is driven from
// the outside.
const (
	StateNew              = "New"
	StateUnderReview      = "Under Review"
	StateChangesRequested = "Changes Requested"
	StateSuperseded       = "Superseded"
	StateAccepted         = "Accepted"
	StateRejected         = "Rejected"
)

type Author struct {
	ID    AuthorID
	Email string
	Name  string
}

// DisplayName returns the author's name, falling back to the email address
// when no name was ever seen on a From header.
func (a *Author) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}

	return a.Email
}

type State struct {
	ID   StateID
	Name string
}

type Patch struct {
	ID        PatchID
	Name      string
	Filename  string
	Date      time.Time
	Content   string
	DLContent string
	AltID     string
	AuthorID  AuthorID
	StateID   StateID
}

// DownloadContent returns the full bundle text when the patch was extracted
// from one, otherwise the diff body itself.
func (p *Patch) DownloadContent() string {
	if p.DLContent != "" {
		return p.DLContent
	}

	return p.Content
}

// NewPatch carries the fields of a patch row to be created. The state is not
// part of it; patches are always created in StateNew.
type NewPatch struct {
	Name      string
	Filename  string
	Date      time.Time
	Content   string
	DLContent string
	AltID     string
	AuthorID  AuthorID
}

type Comment struct {
	ID       CommentID
	AuthorID AuthorID
	Date     time.Time
	Content  string
}

type Msgid struct {
	ID   MsgidID
	Name string
}

type Branch struct {
	ID   BranchID
	Name string
}

type Admin struct {
	ID       AdminID
	Username string
	Password string
}

// PatchSummary is the join row backing patch listings: the patch plus the
// resolved author and state names.
type PatchSummary struct {
	ID         PatchID
	Name       string
	Filename   string
	Date       time.Time
	AltID      string
	AuthorName string
	AuthorMail string
	StateName  string
}

// PatchOrder selects the ordering of ListPatches results.
type PatchOrder string

const (
	OrderByDate   PatchOrder = "date"
	OrderByName   PatchOrder = "name"
	OrderByAuthor PatchOrder = "author"
	OrderByState  PatchOrder = "state"
)
