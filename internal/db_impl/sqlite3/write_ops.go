package sqlite3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kapheine/patchwatch/db"
	"github.com/kapheine/patchwatch/internal/db_impl/sqlite3/utils"
	v0 "github.com/kapheine/patchwatch/internal/db_impl/sqlite3/v0"
)

type writeOps struct {
	readOps
	qw utils.QueryWrapper
}

func (w writeOps) CreateAuthor(ctx context.Context, email, name string) (*db.Author, error) {
	query := fmt.Sprintf("INSERT INTO %v (`%v`, `%v`) VALUES (?, ?) RETURNING `%v`",
		v0.AuthorsTableName,
		v0.AuthorsFieldEmail,
		v0.AuthorsFieldName,
		v0.AuthorsFieldID,
	)

	id, err := utils.MapQueryRow[db.AuthorID](ctx, w.qw, query, email, name)
	if err != nil {
		return nil, err
	}

	return &db.Author{ID: id, Email: email, Name: name}, nil
}

func (w writeOps) CreatePatch(ctx context.Context, patch db.NewPatch) (*db.Patch, error) {
	newState, err := w.StateByName(ctx, db.StateNew)
	if err != nil {
		return nil, fmt.Errorf("looking up default state: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO %v (`%v`, `%v`, `%v`, `%v`, `%v`, `%v`, `%v`, `%v`) VALUES (?,?,?,?,?,?,?,?) RETURNING `%v`",
		v0.PatchesTableName,
		v0.PatchesFieldName,
		v0.PatchesFieldFilename,
		v0.PatchesFieldDate,
		v0.PatchesFieldContent,
		v0.PatchesFieldDLContent,
		v0.PatchesFieldAltID,
		v0.PatchesFieldAuthorID,
		v0.PatchesFieldStateID,
		v0.PatchesFieldID,
	)

	id, err := utils.MapQueryRow[db.PatchID](ctx, w.qw, query,
		patch.Name,
		patch.Filename,
		patch.Date,
		patch.Content,
		patch.DLContent,
		patch.AltID,
		patch.AuthorID,
		newState.ID,
	)
	if err != nil {
		return nil, err
	}

	return &db.Patch{
		ID:        id,
		Name:      patch.Name,
		Filename:  patch.Filename,
		Date:      patch.Date,
		Content:   patch.Content,
		DLContent: patch.DLContent,
		AltID:     patch.AltID,
		AuthorID:  patch.AuthorID,
		StateID:   newState.ID,
	}, nil
}

func (w writeOps) SetPatchState(ctx context.Context, patchID db.PatchID, stateID db.StateID) error {
	query := fmt.Sprintf("UPDATE %v SET `%v` = ? WHERE `%v` = ?",
		v0.PatchesTableName,
		v0.PatchesFieldStateID,
		v0.PatchesFieldID,
	)

	return utils.ExecQueryAndCheckUpdatedNotZero(ctx, w.qw, query, stateID, patchID)
}

func (w writeOps) SetPatchStateByAltID(ctx context.Context, altID string, stateID db.StateID) error {
	query := fmt.Sprintf("UPDATE %v SET `%v` = ? WHERE `%v` = ?",
		v0.PatchesTableName,
		v0.PatchesFieldStateID,
		v0.PatchesFieldAltID,
	)

	updated, err := utils.ExecQuery(ctx, w.qw, query, stateID, altID)
	if err != nil {
		return err
	}

	if updated == 0 {
		return db.ErrNotFound
	}

	return nil
}

func (w writeOps) GetOrCreateMsgid(ctx context.Context, name string) (*db.Msgid, error) {
	selectQuery := fmt.Sprintf("SELECT `%v` FROM %v WHERE `%v` = ?",
		v0.MsgidsFieldID,
		v0.MsgidsTableName,
		v0.MsgidsFieldName,
	)

	id, err := utils.MapQueryRow[db.MsgidID](ctx, w.qw, selectQuery, name)
	if err == nil {
		return &db.Msgid{ID: id, Name: name}, nil
	}

	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	insertQuery := fmt.Sprintf("INSERT INTO %v (`%v`) VALUES (?) RETURNING `%v`",
		v0.MsgidsTableName,
		v0.MsgidsFieldName,
		v0.MsgidsFieldID,
	)

	id, err = utils.MapQueryRow[db.MsgidID](ctx, w.qw, insertQuery, name)
	if err != nil {
		return nil, err
	}

	return &db.Msgid{ID: id, Name: name}, nil
}

func (w writeOps) LinkMsgidPatch(ctx context.Context, msgidID db.MsgidID, patchID db.PatchID) error {
	return w.linkEdge(ctx, v0.MsgidPatchesTableName, v0.MsgidPatchesFieldMsgidID, v0.MsgidPatchesFieldPatchID, int64(msgidID), int64(patchID))
}

func (w writeOps) CreateComment(ctx context.Context, authorID db.AuthorID, date time.Time, content string) (*db.Comment, error) {
	query := fmt.Sprintf("INSERT INTO %v (`%v`, `%v`, `%v`) VALUES (?,?,?) RETURNING `%v`",
		v0.CommentsTableName,
		v0.CommentsFieldAuthorID,
		v0.CommentsFieldDate,
		v0.CommentsFieldContent,
		v0.CommentsFieldID,
	)

	id, err := utils.MapQueryRow[db.CommentID](ctx, w.qw, query, authorID, date, content)
	if err != nil {
		return nil, err
	}

	return &db.Comment{ID: id, AuthorID: authorID, Date: date, Content: content}, nil
}

func (w writeOps) LinkCommentPatch(ctx context.Context, commentID db.CommentID, patchID db.PatchID) error {
	return w.linkEdge(ctx, v0.CommentPatchesTableName, v0.CommentPatchesFieldCommentID, v0.CommentPatchesFieldPatchID, int64(commentID), int64(patchID))
}

func (w writeOps) CreateAdmin(ctx context.Context, username, password string) (*db.Admin, error) {
	query := fmt.Sprintf("INSERT INTO %v (`%v`, `%v`) VALUES (?,?) RETURNING `%v`",
		v0.AdminsTableName,
		v0.AdminsFieldUsername,
		v0.AdminsFieldPassword,
		v0.AdminsFieldID,
	)

	id, err := utils.MapQueryRow[db.AdminID](ctx, w.qw, query, username, password)
	if err != nil {
		return nil, err
	}

	return &db.Admin{ID: id, Username: username, Password: password}, nil
}

func (w writeOps) DeleteAdmin(ctx context.Context, username string) error {
	query := fmt.Sprintf("DELETE FROM %v WHERE `%v` = ?",
		v0.AdminsTableName,
		v0.AdminsFieldUsername,
	)

	deleted, err := utils.ExecQuery(ctx, w.qw, query, username)
	if err != nil {
		return err
	}

	if deleted == 0 {
		return db.ErrNotFound
	}

	return nil
}

func (w writeOps) CreateBranch(ctx context.Context, name string) (*db.Branch, error) {
	query := fmt.Sprintf("INSERT INTO %v (`%v`) VALUES (?) RETURNING `%v`",
		v0.BranchesTableName,
		v0.BranchesFieldName,
		v0.BranchesFieldID,
	)

	id, err := utils.MapQueryRow[db.BranchID](ctx, w.qw, query, name)
	if err != nil {
		return nil, err
	}

	return &db.Branch{ID: id, Name: name}, nil
}

func (w writeOps) DeleteBranch(ctx context.Context, name string) error {
	query := fmt.Sprintf("DELETE FROM %v WHERE `%v` = ?",
		v0.BranchesTableName,
		v0.BranchesFieldName,
	)

	deleted, err := utils.ExecQuery(ctx, w.qw, query, name)
	if err != nil {
		return err
	}

	if deleted == 0 {
		return db.ErrNotFound
	}

	return nil
}

func (w writeOps) LinkBranchPatch(ctx context.Context, branchID db.BranchID, patchID db.PatchID) error {
	return w.linkEdge(ctx, v0.BranchPatchesTableName, v0.BranchPatchesFieldBranchID, v0.BranchPatchesFieldPatchID, int64(branchID), int64(patchID))
}

func (w writeOps) ClearPatchBranches(ctx context.Context, patchID db.PatchID) error {
	query := fmt.Sprintf("DELETE FROM %v WHERE `%v` = ?",
		v0.BranchPatchesTableName,
		v0.BranchPatchesFieldPatchID,
	)

	if _, err := utils.ExecQuery(ctx, w.qw, query, patchID); err != nil {
		return err
	}

	return nil
}

// linkEdge inserts a bridge-table row unless the edge already exists, so that
// re-running a batch never duplicates links.
func (w writeOps) linkEdge(ctx context.Context, table, fieldA, fieldB string, a, b int64) error {
	existsQuery := fmt.Sprintf("SELECT 1 FROM %v WHERE `%v` = ? AND `%v` = ?",
		table,
		fieldA,
		fieldB,
	)

	exists, err := utils.QueryExists(ctx, w.qw, existsQuery, a, b)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	insertQuery := fmt.Sprintf("INSERT INTO %v (`%v`, `%v`) VALUES (?,?)",
		table,
		fieldA,
		fieldB,
	)

	_, err = utils.ExecQuery(ctx, w.qw, insertQuery, a, b)

	return err
}
