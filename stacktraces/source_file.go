package stacktraces

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// SourceFile describes a single compiled source unit, along with the contracts and functions declared in it.
// A SourceFile is built once by the compilation adapter and is read-only afterwards.
type SourceFile struct {
	// globalName is the unique, fully qualified path of the source file.
	globalName string

	// content is the full source text. It never changes after construction, which keeps line numbers computed
	// from it valid forever.
	content string

	// contracts describes the contracts declared in this file, in declaration order.
	contracts []*Contract

	// functions describes the functions declared in this file, in declaration order. The order is significant for
	// GetContainingFunction.
	functions []*ContractFunction

	// lineStartOffsets describes the byte offset at which each line starts. Line 1 always starts at offset 0.
	lineStartOffsets     []int
	lineStartOffsetsOnce sync.Once
}

// NewSourceFile creates a SourceFile with the provided global name and source text.
func NewSourceFile(globalName string, content string) *SourceFile {
	return &SourceFile{
		globalName: globalName,
		content:    content,
	}
}

// GlobalName returns the unique, fully qualified path of the source file.
func (s *SourceFile) GlobalName() string {
	return s.globalName
}

// Content returns the full source text of the file.
func (s *SourceFile) Content() string {
	return s.content
}

// Contracts returns the contracts declared in this file, in declaration order.
func (s *SourceFile) Contracts() []*Contract {
	return slices.Clone(s.contracts)
}

// Functions returns the functions declared in this file, in declaration order.
func (s *SourceFile) Functions() []*ContractFunction {
	return slices.Clone(s.functions)
}

// AddContract appends a contract to the file. The contract must be located in this file.
func (s *SourceFile) AddContract(contract *Contract) error {
	if contract.Location() == nil {
		return errors.Wrapf(ErrInvalidLocation, "contract %v has no location", contract.Name())
	}
	if contract.Location().File() != s {
		return errors.Wrapf(ErrEntityFromAnotherFile, "cannot add contract %v to %v", contract.Name(), s.globalName)
	}
	s.contracts = append(s.contracts, contract)
	return nil
}

// AddFunction appends a function to the file. The function must be located in this file.
func (s *SourceFile) AddFunction(function *ContractFunction) error {
	if function.Location().File() != s {
		return errors.Wrapf(ErrEntityFromAnotherFile, "cannot add function %v to %v", function.Name(), s.globalName)
	}
	s.functions = append(s.functions, function)
	return nil
}

// GetContainingFunction returns the first function, in declaration order, whose location contains the provided
// location. When locations nest (e.g. a modifier enclosing another function), this may be an outer function rather
// than the innermost one. Returns nil if no function contains the location.
func (s *SourceFile) GetContainingFunction(location *SourceLocation) *ContractFunction {
	// TODO: index functions by offset so this is not a linear scan per lookup
	for _, function := range s.functions {
		if function.Location().Contains(location) {
			return function
		}
	}
	return nil
}

// LineStartOffsets returns the byte offset at which each line of the file starts. The first element is always zero.
func (s *SourceFile) LineStartOffsets() []int {
	return slices.Clone(s.lineStarts())
}

// lineStarts computes the line start offsets once and returns the shared, read-only slice.
func (s *SourceFile) lineStarts() []int {
	s.lineStartOffsetsOnce.Do(func() {
		offsets := make([]int, 1, strings.Count(s.content, "\n")+1)
		for i := 0; i < len(s.content); i++ {
			if s.content[i] == '\n' {
				offsets = append(offsets, i+1)
			}
		}
		s.lineStartOffsets = offsets
	})
	return s.lineStartOffsets
}
