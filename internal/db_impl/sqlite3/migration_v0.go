package sqlite3

import (
	"context"
	"fmt"

	"github.com/bradenaw/juniper/xmaps"
	"github.com/bradenaw/juniper/xslices"
	"github.com/kapheine/patchwatch/internal/db_impl/sqlite3/utils"
	v0 "github.com/kapheine/patchwatch/internal/db_impl/sqlite3/v0"
	"github.com/sirupsen/logrus"
)

type MigrationV0 struct{}

func (MigrationV0) Run(ctx context.Context, tx utils.QueryWrapper) error {
	tables := []v0.Table{
		&v0.AuthorsTable{},
		&v0.StatesTable{},
		&v0.PatchesTable{},
		&v0.CommentsTable{},
		&v0.MsgidsTable{},
		&v0.MsgidPatchesTable{},
		&v0.CommentPatchesTable{},
		&v0.BranchesTable{},
		&v0.BranchPatchesTable{},
		&v0.AdminsTable{},
		&v0.VersionTable{},
	}

	tableNames := xslices.Map(tables, func(t v0.Table) string {
		return t.Name()
	})

	query := fmt.Sprintf("SELECT `name` FROM sqlite_master WHERE `type` = 'table' AND `name` NOT LIKE 'sqlite_%%' AND `name` IN (%v)",
		utils.GenSQLIn(len(tables)))

	args := utils.MapSliceToAny(tableNames)

	sqlTables, err := utils.MapQueryRows[string](ctx, tx, query, args...)
	if err != nil {
		return err
	}

	tablesSet := xmaps.SetFromSlice(sqlTables)

	for _, table := range tables {
		if !tablesSet.Contains(table.Name()) {
			logrus.Debugf("Table '%v' does not exist, creating", table.Name())

			if err := table.Create(ctx, tx); err != nil {
				return err
			}
		}
	}

	return nil
}
