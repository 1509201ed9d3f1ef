// Package ingest implements the mail-to-database pipeline: it classifies
// decoded message parts, extracts patch and comment candidates, and persists
// them with supersession, dedup and comment threading semantics.
package ingest

import (
	"context"
	"io"
	"runtime"
	"sync"

	"github.com/kapheine/patchwatch/db"
	"github.com/kapheine/patchwatch/internal/config"
	"github.com/kapheine/patchwatch/internal/message"
	"github.com/sirupsen/logrus"
)

// Stats summarizes one ingestion run.
type Stats struct {
	Messages int
	Skipped  int
	Patches  int
	Comments int
	Failed   int
}

type Pipeline struct {
	cfg        *config.Config
	client     db.Client
	decoder    *message.Decoder
	classifier Classifier
}

func NewPipeline(cfg *config.Config, client db.Client) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		client: client,
		decoder: &message.Decoder{
			SubjectPrefix: cfg.SubjectPrefix,
			Footer:        cfg.Footer,
		},
		classifier: Classifier{
			PatchType:   cfg.PatchType,
			BundleType:  cfg.BundleType,
			CommentType: cfg.CommentType,
			Footer:      cfg.Footer,
		},
	}
}

// extraction is the per-message decode result, produced concurrently and
// consumed in mailbox order.
type extraction struct {
	patches  []PatchCandidate
	comments []CommentCandidate
	err      error
}

// Run ingests every message of the mbox stream. Decoding and classification
// fan out across workers; all database mutations happen afterwards on a
// single goroutine, patches before comments so that replies can attach to
// patches arriving in the same batch. Per-message and per-candidate failures
// are logged and skipped; only reading the archive itself can fail the run.
func (p *Pipeline) Run(ctx context.Context, rr io.Reader) (Stats, error) {
	var stats Stats

	var literals [][]byte

	if err := message.ForEachMessage(rr, func(literal []byte) error {
		literals = append(literals, literal)

		return nil
	}); err != nil {
		return stats, err
	}

	stats.Messages = len(literals)

	results := p.extractAll(literals)

	ingestor := NewIngestor(p.client)

	for _, res := range results {
		if res.err != nil {
			stats.Skipped++

			logrus.WithError(res.err).Warn("Skipping undecodable message")

			continue
		}

		for idx := range res.patches {
			cand := &res.patches[idx]

			if err := ingestor.IngestPatch(ctx, cand); err != nil {
				stats.Failed++

				logrus.WithError(err).
					WithField("msgid", cand.MsgID).
					WithField("author", cand.AuthorEmail).
					WithField("name", cand.Name).
					Error("Failed to ingest patch")

				continue
			}

			stats.Patches++
		}
	}

	for _, res := range results {
		for idx := range res.comments {
			cand := &res.comments[idx]

			if err := ingestor.IngestComment(ctx, cand); err != nil {
				stats.Failed++

				logrus.WithError(err).
					WithField("msgid", cand.MsgID).
					WithField("author", cand.AuthorEmail).
					Error("Failed to ingest comment")

				continue
			}

			stats.Comments++
		}
	}

	return stats, nil
}

// extractAll decodes and classifies all messages across a worker pool. Each
// worker writes only its own indices, so results need no locking and stay in
// mailbox order.
func (p *Pipeline) extractAll(literals [][]byte) []extraction {
	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]extraction, len(literals))
	jobs := make(chan int)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range jobs {
				results[idx] = p.extract(literals[idx])
			}
		}()
	}

	for idx := range literals {
		jobs <- idx
	}

	close(jobs)
	wg.Wait()

	return results
}

func (p *Pipeline) extract(literal []byte) extraction {
	msg, err := p.decoder.Decode(literal)
	if err != nil {
		return extraction{err: err}
	}

	var res extraction

	for _, part := range msg.Parts {
		switch p.classifier.Classify(part.ContentType, part.Body) {
		case KindPlainPatch:
			res.patches = append(res.patches, PatchCandidate{
				Name:        msg.Subject,
				AuthorEmail: msg.FromEmail,
				AuthorName:  msg.FromName,
				Date:        msg.Date,
				MsgID:       msg.MessageID,
				References:  msg.References,
				Content:     p.decoder.CleanBody(part.Body),
			})

		case KindBundle:
			// Records extracted before a mid-bundle failure are kept.
			patches, err := ParseBundle(part.Body, msg.MessageID, msg.References)
			if err != nil {
				logrus.WithError(err).WithField("msgid", msg.MessageID).Warn("Bundle parse failed")
			}

			res.patches = append(res.patches, patches...)

		case KindComment:
			res.comments = append(res.comments, CommentCandidate{
				AuthorEmail: msg.FromEmail,
				AuthorName:  msg.FromName,
				Date:        msg.Date,
				Content:     p.decoder.CleanBody(part.Body),
				MsgID:       msg.MessageID,
				References:  msg.References,
			})
		}
	}

	return res
}
