package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/parser"
	"github.com/razeghi71/docq/value"
)

// ChunkSource splits a value stream into ordered collections of at most N
// documents, so datasets larger than memory can be summarized chunk by
// chunk. It is lazy, finite and non-restartable: the last document of chunk
// k immediately precedes the first document of chunk k+1 in source order,
// and document IDs keep increasing across chunk boundaries.
type ChunkSource struct {
	size int

	// array shape: the top-level array is parsed whole, then sliced.
	arr []value.Value
	pos int

	// line shape: each non-blank line is parsed independently.
	scanner *bufio.Scanner
	line    int

	nextID int
	err    error
	done   bool
}

// Chunks builds a ChunkSource over r. Two input shapes are supported: a
// single top-level JSON array, and newline-delimited JSON values. The shape
// is decided by the first non-whitespace byte.
func Chunks(r io.Reader, size int) (*ChunkSource, error) {
	if size < 1 {
		return nil, fmt.Errorf("chunk size must be at least 1, got %d", size)
	}
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if err == io.EOF {
		return &ChunkSource{size: size, done: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	if first == '[' {
		data, err := io.ReadAll(br)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		v, err := parser.Parse(string(data))
		if err != nil {
			return nil, err
		}
		return &ChunkSource{size: size, arr: v.Arr}, nil
	}

	return &ChunkSource{size: size, scanner: newLineScanner(br)}, nil
}

// OpenChunks opens a .json or .jsonl file (optionally .gz/.zst/.lz4
// compressed) as a chunk stream. The caller must close the returned Closer
// once the stream is drained.
func OpenChunks(filename string, size int) (*ChunkSource, io.Closer, error) {
	format, comp := splitExt(filename)
	if format != ".json" && format != ".jsonl" {
		return nil, nil, fmt.Errorf("chunked loading supports .json and .jsonl, got %q", format)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	r, err := decompress(f, comp)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("cannot decompress %s: %w", filename, err)
	}
	src, err := Chunks(r, size)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return src, f, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for n := 1; ; n++ {
		buf, err := br.Peek(n)
		if err != nil {
			return 0, err
		}
		switch buf[n-1] {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return buf[n-1], nil
		}
	}
}

// Next returns the next chunk, or (nil, nil) once the stream is exhausted. A
// malformed line fails the whole stream: the error sticks and no partial
// chunk is returned.
func (s *ChunkSource) Next() (*document.Collection, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done {
		return nil, nil
	}
	if s.scanner != nil {
		return s.nextLines()
	}
	return s.nextSlice(), nil
}

func (s *ChunkSource) nextSlice() *document.Collection {
	if s.pos >= len(s.arr) {
		s.done = true
		return nil
	}
	end := s.pos + s.size
	if end > len(s.arr) {
		end = len(s.arr)
	}
	docs := make([]document.Document, 0, end-s.pos)
	for _, v := range s.arr[s.pos:end] {
		docs = append(docs, document.Document{ID: s.nextID, Val: v})
		s.nextID++
	}
	s.pos = end
	return document.FromDocs(docs)
}

func (s *ChunkSource) nextLines() (*document.Collection, error) {
	var docs []document.Document
	for len(docs) < s.size && s.scanner.Scan() {
		s.line++
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		v, err := parser.Parse(line)
		if err != nil {
			s.err = fmt.Errorf("invalid JSON on line %d: %w", s.line, err)
			return nil, s.err
		}
		docs = append(docs, document.Document{ID: s.nextID, Val: v})
		s.nextID++
	}
	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("read: %w", err)
		return nil, s.err
	}
	if len(docs) == 0 {
		s.done = true
		return nil, nil
	}
	if len(docs) < s.size {
		s.done = true
	}
	return document.FromDocs(docs), nil
}
