package v0

import (
	"context"

	"github.com/kapheine/patchwatch/db"
	"github.com/kapheine/patchwatch/internal/db_impl/sqlite3/utils"
)

type Table interface {
	Name() string
	Create(ctx context.Context, tx utils.QueryWrapper) error
}

func execQueries(ctx context.Context, tx utils.QueryWrapper, queries []string) error {
	for _, q := range queries {
		if _, err := utils.ExecQuery(ctx, tx, q); err != nil {
			return err
		}
	}

	return nil
}

type AuthorsTable struct{}

func (AuthorsTable) Name() string {
	return AuthorsTableName
}

func (AuthorsTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `authors` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `email` text NOT NULL, `name` text NOT NULL DEFAULT '')",
		"CREATE UNIQUE INDEX `authors_email_key` ON `authors` (`email`)",
	}

	return execQueries(ctx, tx, queries)
}

type StatesTable struct{}

func (StatesTable) Name() string {
	return StatesTableName
}

func (StatesTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `states` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `name` text NOT NULL)",
		"CREATE UNIQUE INDEX `states_name_key` ON `states` (`name`)",
	}

	if err := execQueries(ctx, tx, queries); err != nil {
		return err
	}

	// Patch rows default to state 1; New must be the first row inserted.
	seed := []string{
		db.StateNew,
		db.StateUnderReview,
		db.StateChangesRequested,
		db.StateSuperseded,
		db.StateAccepted,
		db.StateRejected,
	}

	stmt, err := tx.PrepareStatement(ctx, "INSERT INTO `states` (`name`) VALUES (?)")
	if err != nil {
		return err
	}

	defer utils.WrapStmtClose(stmt)

	for _, name := range seed {
		if _, err := utils.ExecStmt(ctx, stmt, name); err != nil {
			return err
		}
	}

	return nil
}

type PatchesTable struct{}

func (PatchesTable) Name() string {
	return PatchesTableName
}

func (PatchesTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `patches` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `name` text NOT NULL, `filename` text NOT NULL DEFAULT '', " +
			"`date` datetime NOT NULL, `content` text NOT NULL, `dlcontent` text NOT NULL DEFAULT '', `altid` text NOT NULL DEFAULT '', " +
			"`author_id` integer NOT NULL, `state_id` integer NOT NULL DEFAULT 1, " +
			"CONSTRAINT `patches_author` FOREIGN KEY (`author_id`) REFERENCES `authors` (`id`), " +
			"CONSTRAINT `patches_state` FOREIGN KEY (`state_id`) REFERENCES `states` (`id`))",
		"CREATE INDEX `patch_altid_name` ON `patches` (`altid`, `name`)",
		"CREATE INDEX `patch_name_author` ON `patches` (`name`, `author_id`)",
	}

	return execQueries(ctx, tx, queries)
}

type CommentsTable struct{}

func (CommentsTable) Name() string {
	return CommentsTableName
}

func (CommentsTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `comments` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `author_id` integer NOT NULL, `date` datetime NOT NULL, `content` text NOT NULL, " +
			"CONSTRAINT `comments_author` FOREIGN KEY (`author_id`) REFERENCES `authors` (`id`))",
		"CREATE INDEX `comment_identity` ON `comments` (`author_id`, `date`)",
	}

	return execQueries(ctx, tx, queries)
}

type MsgidsTable struct{}

func (MsgidsTable) Name() string {
	return MsgidsTableName
}

func (MsgidsTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `msgids` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `name` text NOT NULL)",
		"CREATE UNIQUE INDEX `msgids_name_key` ON `msgids` (`name`)",
	}

	return execQueries(ctx, tx, queries)
}

type MsgidPatchesTable struct{}

func (MsgidPatchesTable) Name() string {
	return MsgidPatchesTableName
}

func (MsgidPatchesTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `msgid_patches` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `msgid_id` integer NOT NULL, `patch_id` integer NOT NULL, " +
			"CONSTRAINT `msgid_patches_msgid` FOREIGN KEY (`msgid_id`) REFERENCES `msgids` (`id`) ON DELETE CASCADE, " +
			"CONSTRAINT `msgid_patches_patch` FOREIGN KEY (`patch_id`) REFERENCES `patches` (`id`) ON DELETE CASCADE)",
		"CREATE UNIQUE INDEX `msgid_patches_edge_key` ON `msgid_patches` (`msgid_id`, `patch_id`)",
	}

	return execQueries(ctx, tx, queries)
}

type CommentPatchesTable struct{}

func (CommentPatchesTable) Name() string {
	return CommentPatchesTableName
}

func (CommentPatchesTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `comment_patches` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `comment_id` integer NOT NULL, `patch_id` integer NOT NULL, " +
			"CONSTRAINT `comment_patches_comment` FOREIGN KEY (`comment_id`) REFERENCES `comments` (`id`) ON DELETE CASCADE, " +
			"CONSTRAINT `comment_patches_patch` FOREIGN KEY (`patch_id`) REFERENCES `patches` (`id`) ON DELETE CASCADE)",
		"CREATE UNIQUE INDEX `comment_patches_edge_key` ON `comment_patches` (`comment_id`, `patch_id`)",
	}

	return execQueries(ctx, tx, queries)
}

type BranchesTable struct{}

func (BranchesTable) Name() string {
	return BranchesTableName
}

func (BranchesTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `branches` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `name` text NOT NULL)",
		"CREATE UNIQUE INDEX `branches_name_key` ON `branches` (`name`)",
		"INSERT INTO `branches` (`name`) VALUES ('stable')",
		"INSERT INTO `branches` (`name`) VALUES ('unstable')",
	}

	return execQueries(ctx, tx, queries)
}

type BranchPatchesTable struct{}

func (BranchPatchesTable) Name() string {
	return BranchPatchesTableName
}

func (BranchPatchesTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `branch_patches` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `branch_id` integer NOT NULL, `patch_id` integer NOT NULL, " +
			"CONSTRAINT `branch_patches_branch` FOREIGN KEY (`branch_id`) REFERENCES `branches` (`id`) ON DELETE CASCADE, " +
			"CONSTRAINT `branch_patches_patch` FOREIGN KEY (`patch_id`) REFERENCES `patches` (`id`) ON DELETE CASCADE)",
		"CREATE UNIQUE INDEX `branch_patches_edge_key` ON `branch_patches` (`branch_id`, `patch_id`)",
	}

	return execQueries(ctx, tx, queries)
}

type AdminsTable struct{}

func (AdminsTable) Name() string {
	return AdminsTableName
}

func (AdminsTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `admins` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT, `username` text NOT NULL, `password` text NOT NULL)",
		"CREATE UNIQUE INDEX `admins_username_key` ON `admins` (`username`)",
	}

	return execQueries(ctx, tx, queries)
}

type VersionTable struct{}

func (VersionTable) Name() string {
	return VersionTableName
}

func (VersionTable) Create(ctx context.Context, tx utils.QueryWrapper) error {
	queries := []string{
		"CREATE TABLE `patchwatch_version` (`id` integer NOT NULL PRIMARY KEY CHECK(`id` = 0), `version` integer NOT NULL)",
		"INSERT INTO `patchwatch_version` (`id`, `version`) VALUES (0, 0)",
	}

	return execQueries(ctx, tx, queries)
}
