package chip8

import (
	"errors"
	"fmt"
)

// ErrProgramTooLarge is returned by LoadProgram when the image does not
// fit into the 3584 bytes of program memory.
var ErrProgramTooLarge = errors.New("program exceeds available memory")

// OpcodeError reports a fetched opcode that matches no defined
// instruction. Machine state is left as the faulting instruction found
// it; the host decides whether to reset or stop.
type OpcodeError struct {
	Opcode  uint16
	Address uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("bad instruction %04X at %03X", e.Opcode, e.Address)
}

// StackError reports a CALL past the 16-entry stack or a RET with an
// empty stack.
type StackError struct {
	Opcode  uint16
	Address uint16
	SP      uint8
}

func (e *StackError) Error() string {
	return fmt.Sprintf("stack fault (SP=%d) on %04X at %03X", e.SP, e.Opcode, e.Address)
}

// MemoryError reports an instruction whose I-relative access would fall
// outside the 4 KiB address space.
type MemoryError struct {
	Opcode  uint16
	Address uint16
	Target  uint32
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory access %04X out of range on %04X at %03X", e.Target, e.Opcode, e.Address)
}
