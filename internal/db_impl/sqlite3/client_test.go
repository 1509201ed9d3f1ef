package sqlite3

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kapheine/patchwatch/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, isNew, err := NewClient(t.TempDir(), false)
	require.NoError(t, err)
	require.True(t, isNew)
	require.NoError(t, client.Init(context.Background()))

	t.Cleanup(func() {
		require.NoError(t, client.Close())
	})

	return client
}

func TestInitSeedsStatesAndBranches(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Read(context.Background(), func(ctx context.Context, ops db.ReadOnly) error {
		for _, name := range []string{
			db.StateNew,
			db.StateUnderReview,
			db.StateChangesRequested,
			db.StateSuperseded,
			db.StateAccepted,
			db.StateRejected,
		} {
			state, err := ops.StateByName(ctx, name)
			require.NoError(t, err, name)
			assert.Equal(t, name, state.Name)
		}

		for _, name := range []string{"stable", "unstable"} {
			branch, err := ops.BranchByName(ctx, name)
			require.NoError(t, err, name)
			assert.Equal(t, name, branch.Name)
		}

		return nil
	}))
}

func TestInitIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	client, isNew, err := NewClient(dir, false)
	require.NoError(t, err)
	require.True(t, isNew)
	require.NoError(t, client.Init(context.Background()))
	require.NoError(t, client.Init(context.Background()))

	require.NoError(t, client.Write(context.Background(), func(ctx context.Context, tx db.Transaction) error {
		_, err := tx.CreateAdmin(ctx, "droundy", "secret")

		return err
	}))

	require.NoError(t, client.Close())

	// Reopening an existing database must not reseed or lose data.
	client, isNew, err = NewClient(dir, false)
	require.NoError(t, err)
	require.False(t, isNew)
	require.NoError(t, client.Init(context.Background()))

	defer func() { require.NoError(t, client.Close()) }()

	require.NoError(t, client.Read(context.Background(), func(ctx context.Context, ops db.ReadOnly) error {
		admin, err := ops.AdminByLogin(ctx, "droundy", "secret")
		require.NoError(t, err)
		assert.Equal(t, "droundy", admin.Username)

		return nil
	}))
}

func TestWriteRollsBackOnError(t *testing.T) {
	client := newTestClient(t)

	errBoom := errors.New("boom")

	err := client.Write(context.Background(), func(ctx context.Context, tx db.Transaction) error {
		if _, err := tx.CreateBranch(ctx, "screened"); err != nil {
			return err
		}

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	require.NoError(t, client.Read(context.Background(), func(ctx context.Context, ops db.ReadOnly) error {
		_, err := ops.BranchByName(ctx, "screened")
		assert.True(t, db.IsErrNotFound(err))

		return nil
	}))
}

func TestSetPatchStateByAltIDNotFound(t *testing.T) {
	client := newTestClient(t)

	err := client.Write(context.Background(), func(ctx context.Context, tx db.Transaction) error {
		state, err := tx.StateByName(ctx, db.StateAccepted)
		if err != nil {
			return err
		}

		return tx.SetPatchStateByAltID(ctx, "no-such-patch", state.ID)
	})
	require.True(t, db.IsErrNotFound(err))
}

func TestAdminLifecycle(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Write(context.Background(), func(ctx context.Context, tx db.Transaction) error {
		if _, err := tx.CreateAdmin(ctx, "kapheine", "hunter2"); err != nil {
			return err
		}

		admin, err := tx.AdminByLogin(ctx, "kapheine", "hunter2")
		if err != nil {
			return err
		}

		assert.Equal(t, "kapheine", admin.Username)

		if _, err := tx.AdminByLogin(ctx, "kapheine", "wrong"); !db.IsErrNotFound(err) {
			return fmt.Errorf("expected bad password to miss, got %v", err)
		}

		return tx.DeleteAdmin(ctx, "kapheine")
	}))

	err := client.Write(context.Background(), func(ctx context.Context, tx db.Transaction) error {
		return tx.DeleteAdmin(ctx, "kapheine")
	})
	require.True(t, db.IsErrNotFound(err))
}

func TestListPatchesFilterAndOrder(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Write(context.Background(), func(ctx context.Context, tx db.Transaction) error {
		jane, err := tx.CreateAuthor(ctx, "jane@example.org", "Jane Doe")
		if err != nil {
			return err
		}

		john, err := tx.CreateAuthor(ctx, "john@example.org", "John Smith")
		if err != nil {
			return err
		}

		for _, p := range []db.NewPatch{
			{Name: "fix the widget", Date: time.Date(2006, 8, 15, 0, 0, 0, 0, time.UTC), Content: "w", AltID: "fix-the-widget", AuthorID: jane.ID},
			{Name: "fix the gadget", Date: time.Date(2006, 8, 16, 0, 0, 0, 0, time.UTC), Content: "g", AltID: "fix-the-gadget", AuthorID: john.ID},
			{Name: "add docs", Date: time.Date(2006, 8, 17, 0, 0, 0, 0, time.UTC), Content: "d", AltID: "add-docs", AuthorID: jane.ID},
		} {
			if _, err := tx.CreatePatch(ctx, p); err != nil {
				return err
			}
		}

		return nil
	}))

	require.NoError(t, client.Read(context.Background(), func(ctx context.Context, ops db.ReadOnly) error {
		// Substring filter on the patch name.
		fixes, err := ops.ListPatches(ctx, "fix", db.OrderByDate)
		require.NoError(t, err)
		require.Len(t, fixes, 2)

		// Date ordering is newest first.
		assert.Equal(t, "fix the gadget", fixes[0].Name)
		assert.Equal(t, "fix the widget", fixes[1].Name)

		byName, err := ops.ListPatches(ctx, "", db.OrderByName)
		require.NoError(t, err)
		require.Len(t, byName, 3)
		assert.Equal(t, "add docs", byName[0].Name)

		byAuthor, err := ops.ListPatches(ctx, "", db.OrderByAuthor)
		require.NoError(t, err)
		require.Len(t, byAuthor, 3)
		assert.Equal(t, "Jane Doe", byAuthor[0].AuthorName)
		assert.Equal(t, "John Smith", byAuthor[2].AuthorName)

		return nil
	}))
}

func TestBranchAssignment(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.Write(context.Background(), func(ctx context.Context, tx db.Transaction) error {
		author, err := tx.CreateAuthor(ctx, "jane@example.org", "Jane Doe")
		if err != nil {
			return err
		}

		patch, err := tx.CreatePatch(ctx, db.NewPatch{
			Name:     "fix the widget",
			Date:     time.Date(2006, 8, 15, 14, 32, 11, 0, time.UTC),
			Content:  "hunk ./w 1",
			AltID:    "fix-the-widget",
			AuthorID: author.ID,
		})
		if err != nil {
			return err
		}

		stable, err := tx.BranchByName(ctx, "stable")
		if err != nil {
			return err
		}

		// Linking twice must not duplicate the edge.
		if err := tx.LinkBranchPatch(ctx, stable.ID, patch.ID); err != nil {
			return err
		}

		if err := tx.LinkBranchPatch(ctx, stable.ID, patch.ID); err != nil {
			return err
		}

		branches, err := tx.BranchesByPatch(ctx, patch.ID)
		if err != nil {
			return err
		}

		require.Len(t, branches, 1)
		assert.Equal(t, "stable", branches[0].Name)

		if err := tx.ClearPatchBranches(ctx, patch.ID); err != nil {
			return err
		}

		branches, err = tx.BranchesByPatch(ctx, patch.ID)
		if err != nil {
			return err
		}

		assert.Empty(t, branches)

		return nil
	}))
}
