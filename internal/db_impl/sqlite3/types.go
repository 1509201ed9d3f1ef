package sqlite3

import (
	"github.com/kapheine/patchwatch/db"
	"github.com/kapheine/patchwatch/internal/db_impl/sqlite3/utils"
)

func ScanAuthor(scanner utils.RowScanner) (*db.Author, error) {
	author := new(db.Author)

	if err := scanner.Scan(&author.ID, &author.Email, &author.Name); err != nil {
		return nil, err
	}

	return author, nil
}

func ScanPatch(scanner utils.RowScanner) (*db.Patch, error) {
	patch := new(db.Patch)

	if err := scanner.Scan(
		&patch.ID,
		&patch.Name,
		&patch.Filename,
		&patch.Date,
		&patch.Content,
		&patch.DLContent,
		&patch.AltID,
		&patch.AuthorID,
		&patch.StateID,
	); err != nil {
		return nil, err
	}

	return patch, nil
}

func ScanPatchSummary(scanner utils.RowScanner) (*db.PatchSummary, error) {
	summary := new(db.PatchSummary)

	if err := scanner.Scan(
		&summary.ID,
		&summary.Name,
		&summary.Filename,
		&summary.Date,
		&summary.AltID,
		&summary.AuthorName,
		&summary.AuthorMail,
		&summary.StateName,
	); err != nil {
		return nil, err
	}

	return summary, nil
}

func ScanComment(scanner utils.RowScanner) (*db.Comment, error) {
	comment := new(db.Comment)

	if err := scanner.Scan(&comment.ID, &comment.AuthorID, &comment.Date, &comment.Content); err != nil {
		return nil, err
	}

	return comment, nil
}

func ScanState(scanner utils.RowScanner) (*db.State, error) {
	state := new(db.State)

	if err := scanner.Scan(&state.ID, &state.Name); err != nil {
		return nil, err
	}

	return state, nil
}

func ScanBranch(scanner utils.RowScanner) (*db.Branch, error) {
	branch := new(db.Branch)

	if err := scanner.Scan(&branch.ID, &branch.Name); err != nil {
		return nil, err
	}

	return branch, nil
}

func ScanAdmin(scanner utils.RowScanner) (*db.Admin, error) {
	admin := new(db.Admin)

	if err := scanner.Scan(&admin.ID, &admin.Username, &admin.Password); err != nil {
		return nil, err
	}

	return admin, nil
}
