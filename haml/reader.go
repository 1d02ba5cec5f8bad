package haml

import (
	"bufio"
	"strings"
)

// Line is one source line split into its indentation and content.
type Line struct {
	LineNumber int

	// Indent is the leading whitespace (blanks and tabs)
	Indent string

	// Content is the line without its indentation and trailing whitespace
	Content string

	// Raw is the line as it appears in the source, used by filters
	Raw string
}

// Blank returns true if the line has no content.
func (l *Line) Blank() bool {
	return len(l.Content) == 0
}

// lineReader reads lines from the source, supporting one-level backtracking with UnreadLine.
type lineReader struct {
	s *bufio.Scanner

	bufferedLine *Line

	// lineCounter is the number of lines read from the scanner
	lineCounter int

	// This is true when we have read the whole source
	atEOF bool
}

func newLineReader(src string) *lineReader {
	s := bufio.NewScanner(strings.NewReader(src))

	// A single line may be as long as the whole source
	maxLine := len(src) + 1
	if maxLine < bufio.MaxScanTokenSize {
		maxLine = bufio.MaxScanTokenSize
	}
	s.Buffer(make([]byte, 0, 4096), maxLine)

	return &lineReader{s: s}
}

// ReadLine returns the next line, or nil at the end of the source.
// Blank lines are returned, check them with Line.Blank.
func (r *lineReader) ReadLine() (*Line, error) {

	// If there is a line alredy buffered, return it
	if r.bufferedLine != nil {
		line := r.bufferedLine
		r.bufferedLine = nil
		return line, nil
	}

	if r.atEOF {
		return nil, nil
	}

	if r.s.Scan() {
		r.lineCounter++

		raw := strings.TrimRight(r.s.Text(), "\r")
		content := strings.TrimLeft(raw, " \t")

		line := &Line{
			LineNumber: r.lineCounter,
			Indent:     raw[:len(raw)-len(content)],
			Content:    strings.TrimRight(content, " \t"),
			Raw:        raw,
		}
		return line, nil
	}

	r.atEOF = true

	// Check if there were other errors apart from EOF
	if err := r.s.Err(); err != nil {
		return nil, &ParseError{
			Kind:  StructuralError,
			Line:  r.lineCounter + 1,
			Msg:   "reading source: " + err.Error(),
			Cause: err,
		}
	}

	return nil, nil
}

// UnreadLine buffers one line that was already returned by ReadLine
func (r *lineReader) UnreadLine(line *Line) {
	if r.bufferedLine != nil {
		panic("UnreadLine: too many calls")
	}
	r.bufferedLine = line
}
