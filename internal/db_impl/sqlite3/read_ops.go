package sqlite3

import (
	"context"
	"fmt"
	"time"

	"github.com/kapheine/patchwatch/db"
	"github.com/kapheine/patchwatch/internal/db_impl/sqlite3/utils"
	v0 "github.com/kapheine/patchwatch/internal/db_impl/sqlite3/v0"
)

type readOps struct {
	qw utils.QueryWrapper
}

const patchColumns = "`id`, `name`, `filename`, `date`, `content`, `dlcontent`, `altid`, `author_id`, `state_id`"

func (r readOps) AuthorByEmail(ctx context.Context, email string) (*db.Author, error) {
	query := fmt.Sprintf("SELECT `%v`, `%v`, `%v` FROM %v WHERE `%v` = ?",
		v0.AuthorsFieldID,
		v0.AuthorsFieldEmail,
		v0.AuthorsFieldName,
		v0.AuthorsTableName,
		v0.AuthorsFieldEmail,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, ScanAuthor, email)
}

func (r readOps) PatchByID(ctx context.Context, id db.PatchID) (*db.Patch, error) {
	query := fmt.Sprintf("SELECT %v FROM %v WHERE `%v` = ?",
		patchColumns,
		v0.PatchesTableName,
		v0.PatchesFieldID,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, ScanPatch, id)
}

func (r readOps) PatchByAltID(ctx context.Context, altID string) (*db.Patch, error) {
	query := fmt.Sprintf("SELECT %v FROM %v WHERE `%v` = ? LIMIT 1",
		patchColumns,
		v0.PatchesTableName,
		v0.PatchesFieldAltID,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, ScanPatch, altID)
}

func (r readOps) PatchByAltIDAndName(ctx context.Context, altID, name string) (*db.Patch, error) {
	query := fmt.Sprintf("SELECT %v FROM %v WHERE `%v` = ? AND `%v` = ? LIMIT 1",
		patchColumns,
		v0.PatchesTableName,
		v0.PatchesFieldAltID,
		v0.PatchesFieldName,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, ScanPatch, altID, name)
}

func (r readOps) PatchesByNameAndAuthor(ctx context.Context, name string, authorID db.AuthorID) ([]*db.Patch, error) {
	query := fmt.Sprintf("SELECT %v FROM %v WHERE `%v` = ? AND `%v` = ? ORDER BY `%v`",
		patchColumns,
		v0.PatchesTableName,
		v0.PatchesFieldName,
		v0.PatchesFieldAuthorID,
		v0.PatchesFieldID,
	)

	return utils.MapQueryRowsFn(ctx, r.qw, query, ScanPatch, name, authorID)
}

func (r readOps) ListPatches(ctx context.Context, search string, order db.PatchOrder) ([]*db.PatchSummary, error) {
	// Date, unlike the other orderings, is descending: newest patches first.
	var orderBy string

	switch order {
	case db.OrderByName:
		orderBy = "patch.`name`"
	case db.OrderByAuthor:
		orderBy = "author.`name`"
	case db.OrderByState:
		orderBy = "state.`name`"
	default:
		orderBy = "patch.`date` DESC"
	}

	query := fmt.Sprintf("SELECT patch.`id`, patch.`name`, patch.`filename`, patch.`date`, patch.`altid`, author.`name`, author.`email`, state.`name` "+
		"FROM %v AS patch "+
		"INNER JOIN %v AS author ON author.`id` = patch.`author_id` "+
		"INNER JOIN %v AS state ON state.`id` = patch.`state_id` "+
		"WHERE patch.`name` LIKE ? ORDER BY %v",
		v0.PatchesTableName,
		v0.AuthorsTableName,
		v0.StatesTableName,
		orderBy,
	)

	return utils.MapQueryRowsFn(ctx, r.qw, query, ScanPatchSummary, "%"+search+"%")
}

func (r readOps) PatchIDsByMsgid(ctx context.Context, msgid string) ([]db.PatchID, error) {
	query := fmt.Sprintf("SELECT link.`%v` FROM %v AS link "+
		"INNER JOIN %v AS msgid ON msgid.`%v` = link.`%v` "+
		"WHERE msgid.`%v` = ? ORDER BY link.`id`",
		v0.MsgidPatchesFieldPatchID,
		v0.MsgidPatchesTableName,
		v0.MsgidsTableName,
		v0.MsgidsFieldID,
		v0.MsgidPatchesFieldMsgidID,
		v0.MsgidsFieldName,
	)

	return utils.MapQueryRows[db.PatchID](ctx, r.qw, query, msgid)
}

func (r readOps) CommentsByPatch(ctx context.Context, patchID db.PatchID) ([]*db.Comment, error) {
	query := fmt.Sprintf("SELECT comment.`id`, comment.`author_id`, comment.`date`, comment.`content` FROM %v AS comment "+
		"INNER JOIN %v AS link ON link.`%v` = comment.`id` "+
		"WHERE link.`%v` = ? ORDER BY comment.`date` ASC",
		v0.CommentsTableName,
		v0.CommentPatchesTableName,
		v0.CommentPatchesFieldCommentID,
		v0.CommentPatchesFieldPatchID,
	)

	return utils.MapQueryRowsFn(ctx, r.qw, query, ScanComment, patchID)
}

func (r readOps) FindComment(ctx context.Context, authorID db.AuthorID, date time.Time, content string) (*db.Comment, error) {
	query := fmt.Sprintf("SELECT `id`, `author_id`, `date`, `content` FROM %v WHERE `%v` = ? AND `%v` = ? AND `%v` = ? LIMIT 1",
		v0.CommentsTableName,
		v0.CommentsFieldAuthorID,
		v0.CommentsFieldDate,
		v0.CommentsFieldContent,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, ScanComment, authorID, date, content)
}

func (r readOps) StateByName(ctx context.Context, name string) (*db.State, error) {
	query := fmt.Sprintf("SELECT `%v`, `%v` FROM %v WHERE `%v` = ?",
		v0.StatesFieldID,
		v0.StatesFieldName,
		v0.StatesTableName,
		v0.StatesFieldName,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, ScanState, name)
}

func (r readOps) AdminByLogin(ctx context.Context, username, password string) (*db.Admin, error) {
	query := fmt.Sprintf("SELECT `%v`, `%v`, `%v` FROM %v WHERE `%v` = ? AND `%v` = ?",
		v0.AdminsFieldID,
		v0.AdminsFieldUsername,
		v0.AdminsFieldPassword,
		v0.AdminsTableName,
		v0.AdminsFieldUsername,
		v0.AdminsFieldPassword,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, ScanAdmin, username, password)
}

func (r readOps) BranchByName(ctx context.Context, name string) (*db.Branch, error) {
	query := fmt.Sprintf("SELECT `%v`, `%v` FROM %v WHERE `%v` = ?",
		v0.BranchesFieldID,
		v0.BranchesFieldName,
		v0.BranchesTableName,
		v0.BranchesFieldName,
	)

	return utils.MapQueryRowFn(ctx, r.qw, query, ScanBranch, name)
}

func (r readOps) BranchesByPatch(ctx context.Context, patchID db.PatchID) ([]*db.Branch, error) {
	query := fmt.Sprintf("SELECT branch.`id`, branch.`name` FROM %v AS branch "+
		"INNER JOIN %v AS link ON link.`%v` = branch.`id` "+
		"WHERE link.`%v` = ? ORDER BY branch.`name`",
		v0.BranchesTableName,
		v0.BranchPatchesTableName,
		v0.BranchPatchesFieldBranchID,
		v0.BranchPatchesFieldPatchID,
	)

	return utils.MapQueryRowsFn(ctx, r.qw, query, ScanBranch, patchID)
}
