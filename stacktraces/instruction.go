package stacktraces

import (
	"fmt"

	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/medusa-geth/core/vm"
	"github.com/holiman/uint256"
	"golang.org/x/exp/slices"
)

// Instruction describes one decoded bytecode position.
type Instruction struct {
	// pc is the byte offset of the instruction within its bytecode.
	pc int

	opcode   vm.OpCode
	jumpType JumpType

	// pushData holds the immediate bytes of push opcodes. It is nil for other opcodes.
	pushData []byte

	// location is nil when the compiler emitted the instruction with no source correspondence, e.g. for dispatcher
	// code.
	location *SourceLocation
}

// NewInstruction creates an Instruction. pushData and location may be nil.
func NewInstruction(pc int, opcode vm.OpCode, jumpType JumpType, pushData []byte, location *SourceLocation) *Instruction {
	return &Instruction{
		pc:       pc,
		opcode:   opcode,
		jumpType: jumpType,
		pushData: slices.Clone(pushData),
		location: location,
	}
}

// PC returns the program counter of the instruction.
func (i *Instruction) PC() int {
	return i.pc
}

// Opcode returns the instruction's opcode.
func (i *Instruction) Opcode() vm.OpCode {
	return i.opcode
}

// JumpType returns how the instruction transfers control.
func (i *Instruction) JumpType() JumpType {
	return i.jumpType
}

// PushData returns the immediate bytes of a push instruction, or nil.
func (i *Instruction) PushData() []byte {
	return slices.Clone(i.pushData)
}

// PushValue returns the immediate bytes of a push instruction as an integer, or nil if there are none.
func (i *Instruction) PushValue() *uint256.Int {
	if i.pushData == nil {
		return nil
	}
	return new(uint256.Int).SetBytes(i.pushData)
}

// Location returns the source range the instruction was compiled from, or nil.
func (i *Instruction) Location() *SourceLocation {
	return i.location
}

// IsJump returns true for JUMP and JUMPI instructions.
func (i *Instruction) IsJump() bool {
	return i.opcode == vm.JUMP || i.opcode == vm.JUMPI
}

// String returns the instruction formatted as "pc: OPCODE [0xdata]".
func (i *Instruction) String() string {
	if i.pushData != nil {
		return fmt.Sprintf("%d: %v %v", i.pc, i.opcode, hexutil.Encode(i.pushData))
	}
	return fmt.Sprintf("%d: %v", i.pc, i.opcode)
}
