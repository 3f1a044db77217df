package stacktraces

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// SourceLocation describes a byte range within a SourceFile. It holds a non-owning reference to its file and is
// immutable, apart from its lazily computed line and column numbers.
type SourceLocation struct {
	// file refers to the SourceFile the range is located in.
	file *SourceFile

	// offset refers to the byte offset which marks the start of the range.
	offset int

	// length refers to the byte length of the range.
	length int

	// line and column are computed on first use from the file's line start offsets.
	line     int
	column   int
	lineOnce sync.Once
}

// NewSourceLocation creates a SourceLocation within the provided file. The range is not validated against the
// length of the file's content.
func NewSourceLocation(file *SourceFile, offset int, length int) (*SourceLocation, error) {
	if file == nil {
		return nil, errors.Wrap(ErrInvalidLocation, "source file is nil")
	}
	if offset < 0 || length < 0 {
		return nil, errors.Wrapf(ErrInvalidLocation, "offset %d and length %d must be non-negative", offset, length)
	}
	return &SourceLocation{
		file:   file,
		offset: offset,
		length: length,
	}, nil
}

// File returns the SourceFile the location is within.
func (l *SourceLocation) File() *SourceFile {
	return l.file
}

// Offset returns the byte offset the location starts at.
func (l *SourceLocation) Offset() int {
	return l.offset
}

// Length returns the byte length of the location.
func (l *SourceLocation) Length() int {
	return l.length
}

// computeLineAndColumn resolves the 1-based line and column of the location's offset exactly once.
func (l *SourceLocation) computeLineAndColumn() {
	l.lineOnce.Do(func() {
		lineStarts := l.file.lineStarts()

		// The number of lines starting at or before our offset is our line number, as each line start after the
		// first one directly follows a newline character located strictly before the offset.
		l.line = sort.Search(len(lineStarts), func(i int) bool {
			return lineStarts[i] > l.offset
		})
		l.column = l.offset - lineStarts[l.line-1] + 1
	})
}

// GetStartingLineNumber returns the 1-based line number the location starts on.
func (l *SourceLocation) GetStartingLineNumber() int {
	l.computeLineAndColumn()
	return l.line
}

// GetStartingColumnNumber returns the 1-based byte column the location starts on.
func (l *SourceLocation) GetStartingColumnNumber() int {
	l.computeLineAndColumn()
	return l.column
}

// GetContainingFunction returns the function in the location's file which contains it, or nil if there is none.
func (l *SourceLocation) GetContainingFunction() *ContractFunction {
	return l.file.GetContainingFunction(l)
}

// Contains returns true if the other location lies within this one. A location contains itself.
func (l *SourceLocation) Contains(other *SourceLocation) bool {
	if other == nil || l.file != other.file {
		return false
	}
	if other.offset < l.offset {
		return false
	}
	return other.offset+other.length <= l.offset+l.length
}

// Equals returns true if both locations describe the same range of the same file.
func (l *SourceLocation) Equals(other *SourceLocation) bool {
	return other != nil && l.file == other.file && l.offset == other.offset && l.length == other.length
}

// String returns the location formatted as "file:line:column".
func (l *SourceLocation) String() string {
	return fmt.Sprintf("%v:%d:%d", l.file.GlobalName(), l.GetStartingLineNumber(), l.GetStartingColumnNumber())
}
