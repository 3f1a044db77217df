package compilation

import (
	"strings"

	"github.com/crytic/medusa-stacktraces/stacktraces"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Model is the symbolication model of one build. It is immutable once BuildModel returns, so it may be queried
// concurrently.
type Model struct {
	sources   []*stacktraces.SourceFile
	contracts []*stacktraces.Contract
	bytecodes []*stacktraces.Bytecode
	index     *stacktraces.BytecodeIndex

	// contractsByName maps a contract name to every contract declaring it, in declaration order.
	contractsByName map[string][]*stacktraces.Contract
}

// newModel creates an empty Model.
func newModel(stripMetadataOnMatch bool) *Model {
	return &Model{
		index:           stacktraces.NewBytecodeIndex(stripMetadataOnMatch),
		contractsByName: make(map[string][]*stacktraces.Contract),
	}
}

// Sources returns every source file, in build description order.
func (m *Model) Sources() []*stacktraces.SourceFile {
	return slices.Clone(m.sources)
}

// Contracts returns every contract and library, in declaration order.
func (m *Model) Contracts() []*stacktraces.Contract {
	return slices.Clone(m.contracts)
}

// Bytecodes returns every decoded bytecode.
func (m *Model) Bytecodes() []*stacktraces.Bytecode {
	return slices.Clone(m.bytecodes)
}

// Index returns the index used to attribute code observed on chain to a decoded bytecode.
func (m *Model) Index() *stacktraces.BytecodeIndex {
	return m.index
}

// ContractByName resolves a contract by its name, or by its "globalName:name" qualified name when more than one
// source file declares the name.
func (m *Model) ContractByName(name string) (*stacktraces.Contract, error) {
	globalName, contractName, qualified := cutQualifiedName(name)

	var matches []*stacktraces.Contract
	for _, contract := range m.contractsByName[contractName] {
		if !qualified || contract.Location().File().GlobalName() == globalName {
			matches = append(matches, contract)
		}
	}

	switch len(matches) {
	case 0:
		return nil, errors.Wrapf(ErrUnknownContract, "%v", name)
	case 1:
		return matches[0], nil
	default:
		return nil, errors.Wrapf(ErrAmbiguousContract, "%v is declared in %d source files", name, len(matches))
	}
}

// BytecodesOf returns the bytecodes decoded for the provided contract.
func (m *Model) BytecodesOf(contract *stacktraces.Contract) []*stacktraces.Bytecode {
	var bytecodes []*stacktraces.Bytecode
	for _, bytecode := range m.bytecodes {
		if bytecode.Contract() == contract {
			bytecodes = append(bytecodes, bytecode)
		}
	}
	return bytecodes
}

// cutQualifiedName splits a "globalName:name" qualified contract name. Global names may themselves contain colons,
// so the last one separates the parts.
func cutQualifiedName(name string) (string, string, bool) {
	separator := strings.LastIndex(name, ":")
	if separator == -1 {
		return "", name, false
	}
	return name[:separator], name[separator+1:], true
}
