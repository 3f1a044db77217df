package types

import (
	"strconv"
	"strings"

	"github.com/crytic/medusa-geth/core/vm"
	"github.com/pkg/errors"
)

// Reference: Source mapping is performed according to the rules specified in solidity documentation:
// https://docs.soliditylang.org/en/latest/internals/source_mappings.html

// SourceMap describes a list of elements which correspond to instruction indexes in compiled bytecode. Instruction
// indexes are not byte offsets, see Disassemble.
type SourceMap []SourceMapElement

// SourceMapElement describes an individual element of a decompressed source mapping output by the compiler.
type SourceMapElement struct {
	// SourceRange describes the portion of a source file the instruction maps to. Its FileIndex is -1 for
	// instructions the compiler generated with no source correspondence.
	SourceRange

	// JumpMarker is the compiler's jump annotation: "" for none, "i" into a function, "o" out of a function, "-"
	// for a jump within one.
	JumpMarker string

	// ModifierDepth refers to the depth in which code has executed a modifier function.
	ModifierDepth int
}

// ParseSourceMap takes a compressed source mapping string "s:l:f:j:m;..." returned by the compiler and decompresses
// it. An empty field or element repeats the value of the previous element.
func ParseSourceMap(sourceMap string) (SourceMap, error) {
	if len(sourceMap) == 0 {
		return nil, nil
	}

	elements := strings.Split(sourceMap, ";")
	result := make(SourceMap, 0, len(elements))
	current := SourceMapElement{
		SourceRange: SourceRange{Offset: -1, Length: -1, FileIndex: -1},
	}

	for i, element := range elements {
		fields := strings.Split(element, ":")
		if len(fields) > 5 {
			return nil, errors.Errorf("source map element %d has too many fields: %q", i, element)
		}

		for j, field := range fields {
			if field == "" {
				continue
			}
			if j == 3 {
				current.JumpMarker = field
				continue
			}

			value, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Wrapf(err, "malformed source map element %d: %q", i, element)
			}
			switch j {
			case 0:
				current.Offset = value
			case 1:
				current.Length = value
			case 2:
				current.FileIndex = value
			case 4:
				current.ModifierDepth = value
			}
		}

		result = append(result, current)
	}
	return result, nil
}

// Operation describes a single disassembled instruction.
type Operation struct {
	// PC is the byte offset of the opcode.
	PC int

	// Opcode is the operation executed.
	Opcode vm.OpCode

	// PushData holds the immediate bytes of a push operation. Code which ends in the middle of push data yields the
	// remaining bytes. It is nil for other operations and PUSH0.
	PushData []byte
}

// Disassemble splits bytecode into its operations, skipping over push data.
func Disassemble(code []byte) []Operation {
	operations := make([]Operation, 0, len(code)/2)

	currentOffset := 0
	for currentOffset < len(code) {
		op := vm.OpCode(code[currentOffset])
		operation := Operation{PC: currentOffset, Opcode: op}

		// Next, calculate the length of data that follows this instruction.
		operandCount := 0
		if op.IsPush() && op != vm.PUSH0 {
			operandCount = int(op) - int(vm.PUSH1) + 1
			end := min(currentOffset+1+operandCount, len(code))
			operation.PushData = code[currentOffset+1 : end]
		}
		operations = append(operations, operation)

		// Advance the offset past this instruction and its operands.
		currentOffset += operandCount + 1
	}
	return operations
}
