package vocab

import (
	"bufio"
	"io"
)

// EOS is the end-of-line sentinel token emitted by ReadWord for a bare
// newline and recognized by the line readers as a stop marker.
const EOS = "</s>"

func isSeparator(b byte) bool {
	switch b {
	case ' ', '\n', '\r', '\t', '\v', '\f', 0:
		return true
	}
	return false
}

// Corpus reads whitespace-delimited tokens from a byte stream. Bytes are
// treated as opaque: ASCII separators are the only bytes interpreted.
//
// Each trainer worker owns its own Corpus; a Corpus is not safe for
// concurrent use.
type Corpus struct {
	src io.Reader
	br  *bufio.Reader
	eof bool
}

// NewCorpus wraps r for token reading. If r is also an io.Seeker, line
// iteration restarts from offset 0 once the stream is exhausted.
func NewCorpus(r io.Reader) *Corpus {
	return &Corpus{src: r, br: bufio.NewReader(r)}
}

// ReadWord returns the next token. A bare newline with no pending token
// yields EOS; a newline terminating a token is unread so the next call
// yields EOS on its own. ok is false only when the stream is exhausted
// with no bytes accumulated: a stream ending exactly at a separator still
// reports its final token. Read errors are treated as end of stream.
func (c *Corpus) ReadWord() (word string, ok bool) {
	var buf []byte
	for {
		b, err := c.br.ReadByte()
		if err != nil {
			c.eof = true
			return string(buf), len(buf) > 0
		}
		if !isSeparator(b) {
			buf = append(buf, b)
			continue
		}
		if len(buf) == 0 {
			if b == '\n' {
				return EOS, true
			}
			continue
		}
		if b == '\n' {
			c.br.UnreadByte()
		}
		return string(buf), true
	}
}

// rewind seeks back to the start of the stream once it has been exhausted,
// making iteration over a fixed corpus implicitly circular. A non-seekable
// source just stays exhausted.
func (c *Corpus) rewind() {
	if !c.eof {
		return
	}
	s, seekable := c.src.(io.Seeker)
	if !seekable {
		return
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return
	}
	c.br.Reset(c.src)
	c.eof = false
}
