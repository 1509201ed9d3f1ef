package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFooter = "_____\nlist footer\n"

func newTestDecoder() *Decoder {
	return &Decoder{
		SubjectPrefix: "[darcs-devel] ",
		Footer:        testFooter,
	}
}

func TestDecodeSimpleMessage(t *testing.T) {
	const literal = `From: "Jane Doe" <jane@example.org>
To: darcs-devel@darcs.net
Subject: [darcs-devel] Re: fix bug
Message-Id: <abc@x>
Date: Tue, 15 Aug 2006 14:32:11 +0000
Content-Type: text/x-patch

diff --git a/foo b/foo
`

	msg, err := newTestDecoder().Decode([]byte(literal))
	require.NoError(t, err)

	assert.Equal(t, "jane@example.org", msg.FromEmail)
	assert.Equal(t, "Jane Doe", msg.FromName)
	assert.Equal(t, "fix bug", msg.Subject)
	assert.Equal(t, "abc@x", msg.MessageID)
	assert.Empty(t, msg.References)
	assert.Equal(t, time.Date(2006, 8, 15, 14, 32, 11, 0, time.UTC), msg.Date)

	require.Len(t, msg.Parts, 1)
	assert.Equal(t, "text/x-patch", msg.Parts[0].ContentType)
	assert.Equal(t, "diff --git a/foo b/foo\n", msg.Parts[0].Body)
}

func TestDecodeReferences(t *testing.T) {
	const literal = `From: jane@example.org
Subject: Re: comments
Message-Id: <reply@x>
References: <abc@x> <def@x>
Content-Type: text/plain

I have thoughts.
`

	msg, err := newTestDecoder().Decode([]byte(literal))
	require.NoError(t, err)

	assert.Equal(t, []string{"abc@x", "def@x"}, msg.References)
}

func TestDecodeQuotedPrintableBody(t *testing.T) {
	const literal = `From: jane@example.org
Subject: qp
Message-Id: <qp@x>
Content-Type: text/plain
Content-Transfer-Encoding: quoted-printable

caf=C3=A9 =41
`

	msg, err := newTestDecoder().Decode([]byte(literal))
	require.NoError(t, err)

	require.Len(t, msg.Parts, 1)
	assert.Equal(t, "café A\n", msg.Parts[0].Body)
}

func TestDecodeFlattensOneLevel(t *testing.T) {
	const literal = `From: jane@example.org
Subject: multipart
Message-Id: <mp@x>
Content-Type: multipart/mixed; boundary="outer"

--outer
Content-Type: text/plain

top comment
--outer
Content-Type: multipart/alternative; boundary="inner"

--inner
Content-Type: text/plain

nested plain
--inner
Content-Type: text/html

<p>nested html</p>
--inner--
--outer
Content-Type: text/x-patch

diff
--outer--
`

	msg, err := newTestDecoder().Decode([]byte(literal))
	require.NoError(t, err)

	// Top-level leaves first, then the expanded sub-parts.
	require.Len(t, msg.Parts, 4)
	assert.Equal(t, "text/plain", msg.Parts[0].ContentType)
	assert.Equal(t, "top comment", msg.Parts[0].Body)
	assert.Equal(t, "text/x-patch", msg.Parts[1].ContentType)
	assert.Equal(t, "text/plain", msg.Parts[2].ContentType)
	assert.Equal(t, "nested plain", msg.Parts[2].Body)
	assert.Equal(t, "text/html", msg.Parts[3].ContentType)
}

func TestDecodeRejectsMissingFrom(t *testing.T) {
	const literal = `Subject: orphan
Message-Id: <orphan@x>
Content-Type: text/plain

hello
`

	_, err := newTestDecoder().Decode([]byte(literal))
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestDecodeRejectsMissingMessageID(t *testing.T) {
	const literal = `From: jane@example.org
Subject: no id
Content-Type: text/plain

hello
`

	_, err := newTestDecoder().Decode([]byte(literal))
	require.ErrorIs(t, err, ErrMalformedMessage)
}

func TestCleanSubject(t *testing.T) {
	d := newTestDecoder()

	tests := []struct {
		in   string
		want string
	}{
		{"[darcs-devel] Re: fix bug", "fix bug"},
		{"[darcs-devel] fix bug", "fix bug"},
		{"Re: Re: fix bug", "fix bug"},
		{"fix\n\tbug", "fix bug"},
		{"fix    bug", "fix bug"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, d.CleanSubject(tc.in))
	}
}

func TestCleanBodyStripsFooter(t *testing.T) {
	d := newTestDecoder()

	assert.Equal(t, "thanks!\n", d.CleanBody("thanks!\n"+testFooter))
	assert.Equal(t, "untouched", d.CleanBody("untouched"))
}

func TestNormalizeMsgid(t *testing.T) {
	assert.Equal(t, "abc@x", NormalizeMsgid("<abc@x>"))
	assert.Equal(t, "abc@x", NormalizeMsgid(" <abc@x> "))
	assert.Equal(t, "abc@x", NormalizeMsgid("abc@x"))
}
