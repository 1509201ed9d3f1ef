package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/kapheine/patchwatch/db"
	"github.com/kapheine/patchwatch/internal/message"
)

// Ingestor persists candidates through the gateway, one transaction per
// patch or comment.
type Ingestor struct {
	client db.Client
}

func NewIngestor(client db.Client) *Ingestor {
	return &Ingestor{client: client}
}

// IngestPatch records one patch candidate. A candidate already present (same
// altid and name, or, for plain patches, a patch already linked to the same
// message id) is reused as-is. A genuinely new patch first marks every
// earlier same-name/same-author submission Superseded — committed on its own,
// so a failure creating the new row cannot undo the supersession — and is
// then created in state New with its message id linked.
func (i *Ingestor) IngestPatch(ctx context.Context, cand *PatchCandidate) error {
	var exists bool

	if err := i.client.Write(ctx, func(ctx context.Context, tx db.Transaction) error {
		author, err := resolveAuthor(ctx, tx, cand.AuthorEmail, cand.AuthorName)
		if err != nil {
			return err
		}

		patch, err := i.findExisting(ctx, tx, cand)
		if err != nil {
			return err
		}

		if patch != nil {
			exists = true

			return linkMsgid(ctx, tx, cand.MsgID, patch.ID)
		}

		return supersedePriors(ctx, tx, cand.Name, author.ID)
	}); err != nil {
		return err
	}

	if exists {
		return nil
	}

	return i.client.Write(ctx, func(ctx context.Context, tx db.Transaction) error {
		author, err := resolveAuthor(ctx, tx, cand.AuthorEmail, cand.AuthorName)
		if err != nil {
			return err
		}

		patch, err := tx.CreatePatch(ctx, db.NewPatch{
			Name:      cand.Name,
			Filename:  cand.Filename,
			Date:      cand.Date,
			Content:   cand.Content,
			DLContent: cand.DLContent,
			AltID:     cand.AltID,
			AuthorID:  author.ID,
		})
		if err != nil {
			return err
		}

		return linkMsgid(ctx, tx, cand.MsgID, patch.ID)
	})
}

// IngestComment records one comment candidate and links it to every patch
// reachable through its own message id or its reference chain. A comment with
// no reachable patch is still persisted for later manual linking.
func (i *Ingestor) IngestComment(ctx context.Context, cand *CommentCandidate) error {
	return i.client.Write(ctx, func(ctx context.Context, tx db.Transaction) error {
		author, err := resolveAuthor(ctx, tx, cand.AuthorEmail, cand.AuthorName)
		if err != nil {
			return err
		}

		comment, err := tx.FindComment(ctx, author.ID, cand.Date, cand.Content)
		if errors.Is(err, db.ErrNotFound) {
			comment, err = tx.CreateComment(ctx, author.ID, cand.Date, cand.Content)
		}

		if err != nil {
			return err
		}

		seen := make(map[db.PatchID]struct{})

		link := func(msgid string) error {
			ids, err := tx.PatchIDsByMsgid(ctx, message.NormalizeMsgid(msgid))
			if err != nil {
				return err
			}

			for _, id := range ids {
				if _, ok := seen[id]; ok {
					continue
				}

				seen[id] = struct{}{}

				if err := tx.LinkCommentPatch(ctx, comment.ID, id); err != nil {
					return err
				}
			}

			return nil
		}

		// The comment may sit in the patch email itself...
		if err := link(cand.MsgID); err != nil {
			return err
		}

		// ...or be a reply somewhere down the thread.
		for _, ref := range cand.References {
			if err := link(ref); err != nil {
				return err
			}
		}

		return nil
	})
}

func (i *Ingestor) findExisting(ctx context.Context, tx db.Transaction, cand *PatchCandidate) (*db.Patch, error) {
	if cand.AltID != "" {
		patch, err := tx.PatchByAltIDAndName(ctx, cand.AltID, cand.Name)
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}

		return patch, err
	}

	// Plain patches carry no altid; their identity is the message they
	// arrived in.
	ids, err := tx.PatchIDsByMsgid(ctx, message.NormalizeMsgid(cand.MsgID))
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, nil
	}

	return tx.PatchByID(ctx, ids[0])
}

func supersedePriors(ctx context.Context, tx db.Transaction, name string, authorID db.AuthorID) error {
	superseded, err := tx.StateByName(ctx, db.StateSuperseded)
	if err != nil {
		return fmt.Errorf("looking up superseded state: %w", err)
	}

	priors, err := tx.PatchesByNameAndAuthor(ctx, name, authorID)
	if err != nil {
		return err
	}

	for _, prior := range priors {
		if err := tx.SetPatchState(ctx, prior.ID, superseded.ID); err != nil {
			return err
		}
	}

	return nil
}

func resolveAuthor(ctx context.Context, tx db.Transaction, email, name string) (*db.Author, error) {
	author, err := tx.AuthorByEmail(ctx, email)
	if err == nil {
		return author, nil
	}

	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	return tx.CreateAuthor(ctx, email, name)
}

func linkMsgid(ctx context.Context, tx db.Transaction, msgid string, patchID db.PatchID) error {
	m, err := tx.GetOrCreateMsgid(ctx, message.NormalizeMsgid(msgid))
	if err != nil {
		return err
	}

	return tx.LinkMsgidPatch(ctx, m.ID, patchID)
}
