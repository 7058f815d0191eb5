package shell

import (
	"bufio"
	"context"
	"errors"
	"io"
)

// errQuit ends the menu loop: end of input or a cancelled context.
var errQuit = errors.New("quit")

// lineReader feeds lines from r through a channel so reads can be
// abandoned when the context is cancelled.
type lineReader struct {
	lines chan string
	done  chan struct{}
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(lr.lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lr.lines <- sc.Text():
			case <-lr.done:
				return
			}
		}
	}()
	return lr
}

func (lr *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", errQuit
	case line, ok := <-lr.lines:
		if !ok {
			return "", errQuit
		}
		return line, nil
	}
}

func (lr *lineReader) close() {
	select {
	case <-lr.done:
	default:
		close(lr.done)
	}
}
