package db

import (
	"context"
	"time"
)

// ReadOnly is the query surface of the persistence gateway. All lookups
// return ErrNotFound when no row matches.
type ReadOnly interface {
	AuthorByEmail(ctx context.Context, email string) (*Author, error)

	PatchByID(ctx context.Context, id PatchID) (*Patch, error)
	PatchByAltID(ctx context.Context, altID string) (*Patch, error)
	PatchByAltIDAndName(ctx context.Context, altID, name string) (*Patch, error)
	PatchesByNameAndAuthor(ctx context.Context, name string, authorID AuthorID) ([]*Patch, error)
	ListPatches(ctx context.Context, query string, order PatchOrder) ([]*PatchSummary, error)

	// PatchIDsByMsgid returns the ids of every patch linked to the given
	// normalized message identifier, in link creation order.
	PatchIDsByMsgid(ctx context.Context, msgid string) ([]PatchID, error)

	CommentsByPatch(ctx context.Context, patchID PatchID) ([]*Comment, error)
	FindComment(ctx context.Context, authorID AuthorID, date time.Time, content string) (*Comment, error)

	StateByName(ctx context.Context, name string) (*State, error)

	AdminByLogin(ctx context.Context, username, password string) (*Admin, error)
	BranchByName(ctx context.Context, name string) (*Branch, error)
	BranchesByPatch(ctx context.Context, patchID PatchID) ([]*Branch, error)
}

// Transaction is the mutation surface. It is only ever reachable through
// Client.Write, which guarantees that all calls within one closure commit or
// roll back together.
type Transaction interface {
	ReadOnly

	CreateAuthor(ctx context.Context, email, name string) (*Author, error)

	CreatePatch(ctx context.Context, patch NewPatch) (*Patch, error)
	SetPatchState(ctx context.Context, patchID PatchID, stateID StateID) error
	SetPatchStateByAltID(ctx context.Context, altID string, stateID StateID) error

	GetOrCreateMsgid(ctx context.Context, name string) (*Msgid, error)
	// LinkMsgidPatch records the msgid/patch edge; it is a no-op if the edge
	// already exists.
	LinkMsgidPatch(ctx context.Context, msgidID MsgidID, patchID PatchID) error

	CreateComment(ctx context.Context, authorID AuthorID, date time.Time, content string) (*Comment, error)
	// LinkCommentPatch records the comment/patch edge; it is a no-op if the
	// edge already exists.
	LinkCommentPatch(ctx context.Context, commentID CommentID, patchID PatchID) error

	CreateAdmin(ctx context.Context, username, password string) (*Admin, error)
	DeleteAdmin(ctx context.Context, username string) error

	CreateBranch(ctx context.Context, name string) (*Branch, error)
	DeleteBranch(ctx context.Context, name string) error
	LinkBranchPatch(ctx context.Context, branchID BranchID, patchID PatchID) error
	ClearPatchBranches(ctx context.Context, patchID PatchID) error
}
