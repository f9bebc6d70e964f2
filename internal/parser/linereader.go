package parser

import (
	"bufio"
	"io"
)

const (
	initialScanBufSize = 64 * 1024        // 64KB
	maxLineSize        = 64 * 1024 * 1024 // 64MB
)

// lineReader reads JSONL files line by line. Lines longer than
// maxLen are consumed and reported as oversized instead of
// aborting the read. The buffer starts small and grows on demand
// up to maxLen.
type lineReader struct {
	r      *bufio.Reader
	maxLen int
	buf    []byte
	err    error
}

func newLineReader(r io.Reader, maxLen int) *lineReader {
	return &lineReader{
		r:      bufio.NewReaderSize(r, initialScanBufSize),
		maxLen: maxLen,
		buf:    make([]byte, 0, initialScanBufSize),
	}
}

// next returns the next line without its trailing newline. Blank
// lines are returned as "". oversized is true when the line
// exceeded maxLen; its content is dropped. ok is false at EOF or
// after a read failure (see Err).
func (lr *lineReader) next() (line string, oversized, ok bool) {
	if lr.err != nil {
		return "", false, false
	}
	line, oversized, err := lr.readLine()
	if err != nil {
		if err != io.EOF {
			lr.err = err
		}
		return "", false, false
	}
	return line, oversized, true
}

// Err returns the first non-EOF read error, if any.
func (lr *lineReader) Err() error {
	return lr.err
}

func (lr *lineReader) readLine() (string, bool, error) {
	lr.buf = lr.buf[:0]
	oversized := false
	started := false

	for {
		chunk, isPrefix, err := lr.r.ReadLine()
		if err != nil {
			if started && err == io.EOF {
				break
			}
			return "", false, err
		}
		started = true

		if oversized {
			if !isPrefix {
				break
			}
			continue
		}

		lr.buf = append(lr.buf, chunk...)
		if len(lr.buf) > lr.maxLen {
			oversized = true
			lr.buf = lr.buf[:0]
		}

		if !isPrefix {
			break
		}
	}

	if oversized {
		return "", true, nil
	}
	return string(lr.buf), false, nil
}
