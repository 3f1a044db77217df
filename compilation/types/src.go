package types

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SourceRange describes a decoded AST "src" attribute, "offset:length:fileIndex", e.g. "95:42:0".
type SourceRange struct {
	// Offset is the byte offset the range starts at.
	Offset int

	// Length is the byte length of the range.
	Length int

	// FileIndex identifies the source unit. It is -1 when the range has no source correspondence, or when the
	// attribute omitted it.
	FileIndex int
}

// ParseSourceRange parses an AST "src" attribute. The file index may be omitted.
func ParseSourceRange(src string) (SourceRange, error) {
	fields := strings.Split(src, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return SourceRange{}, errors.Errorf("malformed source range %q", src)
	}

	values := []int{0, 0, -1}
	for i, field := range fields {
		value, err := strconv.Atoi(field)
		if err != nil {
			return SourceRange{}, errors.Wrapf(err, "malformed source range %q", src)
		}
		values[i] = value
	}

	return SourceRange{
		Offset:    values[0],
		Length:    values[1],
		FileIndex: values[2],
	}, nil
}
