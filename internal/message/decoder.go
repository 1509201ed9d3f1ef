// Package message turns raw RFC-822 literals from a mailbox archive into
// normalized header records with flattened, decoded body parts.
package message

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"
)

// ErrMalformedMessage marks a message whose headers or structure cannot be
// decoded. Callers skip the message and continue the batch.
var ErrMalformedMessage = errors.New("malformed message")

// Message is one decoded mail item. It only lives for the duration of a
// single ingestion pass.
type Message struct {
	FromEmail  string
	FromName   string
	Subject    string
	MessageID  string
	References []string
	Date       time.Time
	Parts      []Part
}

// Part is a decoded MIME leaf. The body has its transfer encoding undone but
// is otherwise verbatim; footer stripping is left to the caller so that
// footer-only parts remain recognizable.
type Part struct {
	ContentType string
	Body        string
}

// Decoder decodes messages against a configured mailing list: the subject
// prefix to strip and the list footer to remove from bodies.
type Decoder struct {
	SubjectPrefix string
	Footer        string
}

// Decode parses one raw message. Multipart bodies are flattened exactly one
// level deep: sub-parts of a top-level multipart part are appended after all
// top-level parts. Deeper nesting is intentionally not expanded.
func (d *Decoder) Decode(literal []byte) (*Message, error) {
	entity, err := message.Read(bytes.NewReader(literal))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	header := mail.Header{Header: entity.Header}

	from, err := header.AddressList("From")
	if err != nil || len(from) == 0 {
		return nil, fmt.Errorf("%w: no parseable From address", ErrMalformedMessage)
	}

	msgid, err := header.MessageID()
	if err != nil || msgid == "" {
		return nil, fmt.Errorf("%w: no message id", ErrMalformedMessage)
	}

	subject, err := header.Subject()
	if err != nil {
		subject = entity.Header.Get("Subject")
	}

	// An unparsable date is not worth dropping the message over.
	date, err := header.Date()
	if err != nil {
		date = time.Time{}
	}

	msg := &Message{
		FromEmail:  from[0].Address,
		FromName:   from[0].Name,
		Subject:    d.CleanSubject(subject),
		MessageID:  NormalizeMsgid(msgid),
		References: parseReferences(header),
		Date:       date.UTC(),
	}

	msg.Parts, err = flattenParts(entity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	return msg, nil
}

func flattenParts(entity *message.Entity) ([]Part, error) {
	mr := entity.MultipartReader()
	if mr == nil {
		part, err := readPart(entity)
		if err != nil {
			return nil, err
		}

		return []Part{part}, nil
	}

	var parts, nested []Part

	for {
		child, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		if cmr := child.MultipartReader(); cmr != nil {
			// One level of flattening only; anything nested deeper is left
			// unexpanded on purpose.
			for {
				sub, err := cmr.NextPart()
				if errors.Is(err, io.EOF) {
					break
				} else if err != nil {
					return nil, err
				}

				if sub.MultipartReader() != nil {
					logrus.Debug("Skipping multipart nested below one level")
					continue
				}

				part, err := readPart(sub)
				if err != nil {
					return nil, err
				}

				nested = append(nested, part)
			}

			continue
		}

		part, err := readPart(child)
		if err != nil {
			return nil, err
		}

		parts = append(parts, part)
	}

	return append(parts, nested...), nil
}

func readPart(entity *message.Entity) (Part, error) {
	contentType, _, err := entity.Header.ContentType()
	if err != nil {
		contentType = "text/plain"
	}

	body, err := io.ReadAll(entity.Body)
	if err != nil {
		return Part{}, err
	}

	return Part{ContentType: contentType, Body: string(body)}, nil
}

// CleanSubject normalizes a subject line: internal newlines and tabs become
// spaces, the mailing list prefix and any "Re: " markers are dropped, and
// runs of spaces collapse.
func (d *Decoder) CleanSubject(subject string) string {
	s := strings.ReplaceAll(subject, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "Re: ", "")

	if d.SubjectPrefix != "" {
		s = strings.ReplaceAll(s, d.SubjectPrefix, "")
	}

	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}

	return strings.TrimSpace(s)
}

// CleanBody strips the configured list footer wherever it appears verbatim.
func (d *Decoder) CleanBody(body string) string {
	if d.Footer == "" {
		return body
	}

	return strings.ReplaceAll(body, d.Footer, "")
}

// NormalizeMsgid reduces a message identifier to its threading key: no angle
// brackets, no surrounding whitespace.
func NormalizeMsgid(msgid string) string {
	return strings.Trim(strings.TrimSpace(msgid), "<>")
}

func parseReferences(header mail.Header) []string {
	refs, err := header.MsgIDList("References")
	if err == nil {
		for i, ref := range refs {
			refs[i] = NormalizeMsgid(ref)
		}

		return refs
	}

	// Folded or otherwise non-conforming References headers still carry
	// usable ids; fall back to splitting on whitespace.
	var out []string

	for _, tok := range strings.Fields(header.Get("References")) {
		if ref := NormalizeMsgid(tok); ref != "" {
			out = append(out, ref)
		}
	}

	return out
}
