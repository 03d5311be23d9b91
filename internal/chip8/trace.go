package chip8

import (
	rglib "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Mnemonic resolves an opcode word to its instruction name using the
// retrogolib CHIP-8 opcode tables. Opcodes outside the instruction set
// yield an empty string. Used by the trace hook; execution itself
// never consults the tables.
func Mnemonic(op uint16) string {
	for _, candidate := range rglib.Opcodes[int(op>>12)] {
		if candidate.Info.Mask&op == candidate.Info.Value && candidate.Instruction != nil {
			return candidate.Instruction.Name
		}
	}
	return ""
}
