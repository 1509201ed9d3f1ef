package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/kapheine/patchwatch/db"
	"github.com/kapheine/patchwatch/internal/config"
	"github.com/kapheine/patchwatch/internal/db_impl/sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T) db.Client {
	t.Helper()

	client, isNew, err := sqlite3.NewClient(t.TempDir(), false)
	require.NoError(t, err)
	require.True(t, isNew)
	require.NoError(t, client.Init(context.Background()))

	t.Cleanup(func() {
		require.NoError(t, client.Close())
	})

	return client
}

func buildMBox(literals ...string) io.Reader {
	var b strings.Builder

	for _, literal := range literals {
		b.WriteString("From jane@example.org Tue Aug 15 14:32:11 2006\n")
		b.WriteString(literal)

		if !strings.HasSuffix(literal, "\n") {
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}

	return strings.NewReader(b.String())
}

func plainPatchMessage(msgid, subject, diff string) string {
	return fmt.Sprintf(`From: "Jane Doe" <jane@example.org>
To: darcs-devel@darcs.net
Subject: %v
Message-Id: <%v>
Date: Tue, 15 Aug 2006 14:32:11 +0000
Content-Type: text/x-patch

%v`, subject, msgid, diff)
}

func bundleText(title, author, stamp, filename, diff string) string {
	return fmt.Sprintf(`New patches:

This is an automatically generated bundle.
[%v
%v**%v
%v] {
%v
}
`, title, author, stamp, filename, diff)
}

func bundleMessage(msgid, subject, bundle string) string {
	return fmt.Sprintf(`From: "Jane Doe" <jane@example.org>
To: darcs-devel@darcs.net
Subject: %v
Message-Id: <%v>
Date: Tue, 15 Aug 2006 14:32:11 +0000
Content-Type: text/x-darcs-patch

%v`, subject, msgid, bundle)
}

func commentMessage(msgid, references, body string) string {
	return fmt.Sprintf(`From: "John Smith" <john@example.org>
To: darcs-devel@darcs.net
Subject: [darcs-devel] Re: review
Message-Id: <%v>
References: %v
Date: Wed, 16 Aug 2006 09:00:00 +0000
Content-Type: text/plain

%v`, msgid, references, body)
}

func listAll(t *testing.T, client db.Client) []*db.PatchSummary {
	t.Helper()

	var patches []*db.PatchSummary

	require.NoError(t, client.Read(context.Background(), func(ctx context.Context, ops db.ReadOnly) error {
		var err error

		patches, err = ops.ListPatches(ctx, "", db.OrderByDate)

		return err
	}))

	return patches
}

func runPipeline(t *testing.T, cfg *config.Config, client db.Client, mbox io.Reader) Stats {
	t.Helper()

	stats, err := NewPipeline(cfg, client).Run(context.Background(), mbox)
	require.NoError(t, err)

	return stats
}

func TestPipelineExampleScenario(t *testing.T) {
	cfg := config.Default()
	client := newTestClient(t)

	stats := runPipeline(t, cfg, client, buildMBox(
		plainPatchMessage("abc@x", "[darcs-devel] Re: fix bug", "diff --git a/foo b/foo"),
	))

	assert.Equal(t, 1, stats.Messages)
	assert.Equal(t, 1, stats.Patches)
	assert.Zero(t, stats.Skipped)
	assert.Zero(t, stats.Failed)

	require.NoError(t, client.Read(context.Background(), func(ctx context.Context, ops db.ReadOnly) error {
		author, err := ops.AuthorByEmail(ctx, "jane@example.org")
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", author.Name)
		assert.Equal(t, "Jane Doe", author.DisplayName())

		ids, err := ops.PatchIDsByMsgid(ctx, "abc@x")
		require.NoError(t, err)
		require.Len(t, ids, 1)

		patch, err := ops.PatchByID(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "fix bug", patch.Name)
		assert.Equal(t, author.ID, patch.AuthorID)
		assert.Contains(t, patch.Content, "diff --git a/foo b/foo")

		state, err := ops.StateByName(ctx, db.StateNew)
		require.NoError(t, err)
		assert.Equal(t, state.ID, patch.StateID)

		return nil
	}))
}

func TestPipelineIdempotence(t *testing.T) {
	cfg := config.Default()
	client := newTestClient(t)

	bundle := bundleText("fix the widget", "Jane Doe <jane@example.org>", "20060815143211", "fix-the-widget.gz", "hunk ./w 1")

	mbox := func() io.Reader {
		return buildMBox(
			bundleMessage("abc@x", "[darcs-devel] fix the widget", bundle),
			commentMessage("reply@x", "<abc@x>", "looks good to me"),
		)
	}

	runPipeline(t, cfg, client, mbox())

	first := listAll(t, client)
	require.Len(t, first, 1)

	stats := runPipeline(t, cfg, client, mbox())
	assert.Zero(t, stats.Skipped)
	assert.Zero(t, stats.Failed)

	second := listAll(t, client)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, db.StateNew, second[0].StateName)

	require.NoError(t, client.Read(context.Background(), func(ctx context.Context, ops db.ReadOnly) error {
		ids, err := ops.PatchIDsByMsgid(ctx, "abc@x")
		require.NoError(t, err)
		assert.Len(t, ids, 1)

		comments, err := ops.CommentsByPatch(ctx, first[0].ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)

		return nil
	}))
}

func TestPipelineSupersession(t *testing.T) {
	cfg := config.Default()
	client := newTestClient(t)

	v1 := bundleText("fix the widget", "Jane Doe <jane@example.org>", "20060815143211", "fix-the-widget-1.gz", "hunk ./w 1")
	v2 := bundleText("fix the widget", "Jane Doe <jane@example.org>", "20060816090000", "fix-the-widget-2.gz", "hunk ./w 2")

	runPipeline(t, cfg, client, buildMBox(
		bundleMessage("v1@x", "[darcs-devel] fix the widget", v1),
		bundleMessage("v2@x", "[darcs-devel] fix the widget (take 2)", v2),
	))

	patches := listAll(t, client)
	require.Len(t, patches, 2)

	states := make(map[string]string)

	for _, patch := range patches {
		states[patch.AltID] = patch.StateName
	}

	assert.Equal(t, db.StateSuperseded, states["fix-the-widget-1"])
	assert.Equal(t, db.StateNew, states["fix-the-widget-2"])
}

func TestPipelineDedup(t *testing.T) {
	cfg := config.Default()
	client := newTestClient(t)

	bundle := bundleText("fix the widget", "Jane Doe <jane@example.org>", "20060815143211", "fix-the-widget.gz", "hunk ./w 1")

	// The same record arrives twice, re-sent under a new message id.
	runPipeline(t, cfg, client, buildMBox(
		bundleMessage("first@x", "[darcs-devel] fix the widget", bundle),
		bundleMessage("resend@x", "[darcs-devel] fix the widget (resend)", bundle),
	))

	patches := listAll(t, client)
	require.Len(t, patches, 1)
	assert.Equal(t, db.StateNew, patches[0].StateName)

	// The resend's message id joins the patch's identity history.
	require.NoError(t, client.Read(context.Background(), func(ctx context.Context, ops db.ReadOnly) error {
		for _, msgid := range []string{"first@x", "resend@x"} {
			ids, err := ops.PatchIDsByMsgid(ctx, msgid)
			require.NoError(t, err)
			assert.Len(t, ids, 1, msgid)
		}

		return nil
	}))
}

func TestPipelineCommentFanOut(t *testing.T) {
	cfg := config.Default()
	client := newTestClient(t)

	one := bundleText("fix the widget", "Jane Doe <jane@example.org>", "20060815143211", "fix-the-widget.gz", "hunk ./w 1")
	two := bundleText("fix the gadget", "Jane Doe <jane@example.org>", "20060815150000", "fix-the-gadget.gz", "hunk ./g 1")

	stats := runPipeline(t, cfg, client, buildMBox(
		bundleMessage("one@x", "[darcs-devel] fix the widget", one),
		bundleMessage("two@x", "[darcs-devel] fix the gadget", two),
		commentMessage("reply@x", "<one@x> <two@x>", "applies to both"),
	))

	assert.Equal(t, 2, stats.Patches)
	assert.Equal(t, 1, stats.Comments)

	patches := listAll(t, client)
	require.Len(t, patches, 2)

	require.NoError(t, client.Read(context.Background(), func(ctx context.Context, ops db.ReadOnly) error {
		var commentIDs []db.CommentID

		for _, patch := range patches {
			comments, err := ops.CommentsByPatch(ctx, patch.ID)
			require.NoError(t, err)
			require.Len(t, comments, 1)

			commentIDs = append(commentIDs, comments[0].ID)
		}

		// One comment row, two edges.
		assert.Equal(t, commentIDs[0], commentIDs[1])

		return nil
	}))
}

func TestPipelineUnmatchedCommentIsKept(t *testing.T) {
	cfg := config.Default()
	client := newTestClient(t)

	stats := runPipeline(t, cfg, client, buildMBox(
		commentMessage("reply@x", "<nothing@x>", "replying to a patch we never saw"),
	))

	assert.Equal(t, 1, stats.Comments)
	assert.Empty(t, listAll(t, client))
}

func TestPipelineSkipsMalformedMessage(t *testing.T) {
	cfg := config.Default()
	client := newTestClient(t)

	stats := runPipeline(t, cfg, client, buildMBox(
		"this is not a mail message at all",
		plainPatchMessage("abc@x", "[darcs-devel] fix bug", "diff"),
	))

	assert.Equal(t, 2, stats.Messages)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Patches)
	require.Len(t, listAll(t, client), 1)
}

func TestExtractIgnoresFooterOnlyPart(t *testing.T) {
	cfg := config.Default()
	cfg.Footer = "_____\nlist footer\n"

	client := newTestClient(t)
	pipeline := NewPipeline(cfg, client)

	literal := fmt.Sprintf(`From: jane@example.org
Subject: [darcs-devel] Re: review
Message-Id: <footer@x>
Date: Tue, 15 Aug 2006 14:32:11 +0000
Content-Type: text/plain

%v`, cfg.Footer)

	res := pipeline.extract([]byte(literal))
	require.NoError(t, res.err)
	assert.Empty(t, res.comments)
	assert.Empty(t, res.patches)
}

func TestExtractKeepsBundleRecordsBeforeFailure(t *testing.T) {
	cfg := config.Default()
	client := newTestClient(t)
	pipeline := NewPipeline(cfg, client)

	bundle := bundleText("good patch", "Jane Doe <jane@example.org>", "20060815143211", "good-patch.gz", "hunk ./a 1") +
		"[broken record without author line\n"

	res := pipeline.extract([]byte(bundleMessage("abc@x", "[darcs-devel] bundle", bundle)))
	require.NoError(t, res.err)
	require.Len(t, res.patches, 1)
	assert.Equal(t, "good patch", res.patches[0].Name)
}
