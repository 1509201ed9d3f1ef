package ingest

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ErrMalformedBundle marks a bundle that broke mid-stream. Records extracted
// before the failure are still returned and kept.
var ErrMalformedBundle = errors.New("malformed bundle")

// Bundles carry darcs' compact UTC timestamps.
const bundleTimeLayout = "20060102150405"

// ParseBundle parses a patch-bundle body into its individual patch records.
//
// The bundle opens with a mandatory three line preamble, which is discarded.
// Each record is a metadata group followed by a diff body:
//
//	[<title>
//	<author>**<timestamp>
//	<filename>] {
//	<diff line>
//	...
//	}
//
// Diff lines are kept verbatim up to, and excluding, the line starting with
// the `}` terminator. Running out of input before the next metadata group is
// the normal end of the bundle.
func ParseBundle(text, msgid string, references []string) ([]PatchCandidate, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: missing preamble", ErrMalformedBundle)
	}

	var patches []PatchCandidate

	idx := 3

	for {
		// Blank lines between records carry nothing.
		for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
			idx++
		}

		if idx >= len(lines) {
			return patches, nil
		}

		if !strings.HasPrefix(lines[idx], "[") {
			return patches, fmt.Errorf("%w: expected metadata at line %v", ErrMalformedBundle, idx+1)
		}

		title := strings.TrimPrefix(lines[idx], "[")
		idx++

		if idx >= len(lines) {
			return patches, fmt.Errorf("%w: truncated metadata", ErrMalformedBundle)
		}

		authorPart, stamp, ok := strings.Cut(lines[idx], "**")
		if !ok {
			return patches, fmt.Errorf("%w: bad author line at line %v", ErrMalformedBundle, idx+1)
		}

		author, err := mail.ParseAddress(strings.TrimSpace(authorPart))
		if err != nil {
			return patches, fmt.Errorf("%w: unparseable author %q: %v", ErrMalformedBundle, authorPart, err)
		}

		date, err := time.ParseInLocation(bundleTimeLayout, strings.TrimSpace(stamp), time.UTC)
		if err != nil {
			return patches, fmt.Errorf("%w: bad timestamp %q: %v", ErrMalformedBundle, stamp, err)
		}

		idx++

		if idx >= len(lines) || !strings.HasSuffix(lines[idx], "] {") {
			return patches, fmt.Errorf("%w: missing filename line", ErrMalformedBundle)
		}

		filename := strings.TrimSpace(strings.TrimSuffix(lines[idx], "] {"))
		idx++

		var body []string

		closed := false

		for idx < len(lines) {
			if strings.HasPrefix(lines[idx], "}") {
				closed = true
				idx++

				break
			}

			body = append(body, lines[idx])
			idx++
		}

		if !closed {
			return patches, fmt.Errorf("%w: unterminated diff body", ErrMalformedBundle)
		}

		patches = append(patches, PatchCandidate{
			Name:        title,
			AuthorEmail: author.Address,
			AuthorName:  author.Name,
			Date:        date,
			MsgID:       msgid,
			References:  references,
			Content:     strings.Join(body, "\n"),
			Filename:    filename,
			AltID:       altIDFromFilename(filename),
			DLContent:   text,
		})
	}
}

// altIDFromFilename drops the filename's last three characters. This is the
// export convention's fixed-width extension, not a generic dot-extension
// strip.
func altIDFromFilename(filename string) string {
	if len(filename) <= 3 {
		return ""
	}

	return filename[:len(filename)-3]
}
