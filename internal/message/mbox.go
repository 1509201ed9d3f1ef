package message

import (
	"errors"
	"io"

	"github.com/emersion/go-mbox"
)

// ForEachMessage calls fn with the raw literal of every message in the mbox
// stream, in archive order.
func ForEachMessage(rr io.Reader, fn func([]byte) error) error {
	mr := mbox.NewReader(rr)

	var (
		r   io.Reader
		err error
	)

	for r, err = mr.NextMessage(); err == nil; r, err = mr.NextMessage() {
		literal, err := io.ReadAll(r)
		if err != nil {
			return err
		}

		if err := fn(literal); err != nil {
			return err
		}
	}

	if !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}
