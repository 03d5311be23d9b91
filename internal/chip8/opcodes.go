package chip8

// Instruction decoding and execution.
//
// Dispatch is two-level, mirroring the canonical structure of the
// instruction set: a 16-way branch on the top nibble, then a secondary
// branch on kk inside groups 0x0, 0xE and 0xF and on n inside group
// 0x8. Field layout of an opcode word:
//
//	nnn = low 12 bits   n = low nibble   kk = low byte
//	x   = bits 8-11     y = bits 4-7

// execute runs one decoded instruction. addr is the address the opcode
// was fetched from (PC has already advanced past it) and is only used
// for fault reporting.
func (m *Machine) execute(addr, op uint16) error {
	var (
		nnn = op & 0x0FFF
		n   = uint8(op & 0x000F)
		kk  = uint8(op & 0x00FF)
		x   = uint8(op>>8) & 0x0F
		y   = uint8(op>>4) & 0x0F
	)

	switch op >> 12 {
	case 0x0:
		switch kk {
		case 0xE0: // 00E0 | CLS
			m.display = [DisplaySize]uint8{}
		case 0xEE: // 00EE | RET
			return m.ret(addr, op)
		default:
			return &OpcodeError{Opcode: op, Address: addr}
		}

	case 0x1: // 1NNN | JMP addr
		m.PC = nnn

	case 0x2: // 2NNN | CALL addr
		return m.call(addr, op, nnn)

	case 0x3: // 3XKK | SE Vx, byte
		m.skipIf(m.V[x] == kk)

	case 0x4: // 4XKK | SNE Vx, byte
		m.skipIf(m.V[x] != kk)

	case 0x5: // 5XY0 | SE Vx, Vy
		m.skipIf(m.V[x] == m.V[y])

	case 0x6: // 6XKK | LD Vx, byte
		m.V[x] = kk

	case 0x7: // 7XKK | ADD Vx, byte
		m.V[x] += kk

	case 0x8:
		return m.arith(addr, op, x, y, n)

	case 0x9: // 9XY0 | SNE Vx, Vy
		m.skipIf(m.V[x] != m.V[y])

	case 0xA: // ANNN | LD I, addr
		m.I = nnn

	case 0xB: // BNNN | JMP V0, addr
		m.PC = nnn + uint16(m.V[0])

	case 0xC: // CXKK | RND Vx, byte
		m.V[x] = m.rand() & kk

	case 0xD: // DXYN | DRW Vx, Vy, nibble
		return m.drw(addr, op, x, y, n)

	case 0xE:
		switch kk {
		case 0x9E: // EX9E | SKP Vx
			m.skipIf(m.keys[m.V[x]&0x0F])
		case 0xA1: // EXA1 | SKNP Vx
			m.skipIf(!m.keys[m.V[x]&0x0F])
		default:
			return &OpcodeError{Opcode: op, Address: addr}
		}

	case 0xF:
		switch kk {
		case 0x07: // FX07 | LD Vx, DT
			m.V[x] = m.DT
		case 0x0A: // FX0A | LD Vx, K
			m.waitKey(x)
		case 0x15: // FX15 | LD DT, Vx
			m.DT = m.V[x]
		case 0x18: // FX18 | LD ST, Vx
			m.ST = m.V[x]
		case 0x1E: // FX1E | ADD I, Vx
			m.I += uint16(m.V[x])
		case 0x29: // FX29 | LD F, Vx
			m.I = uint16(m.V[x]) * GlyphSize
		case 0x33: // FX33 | BCD Vx
			return m.bcd(addr, op, x)
		case 0x55: // FX55 | LD [I], Vx
			return m.storeRegs(addr, op, x)
		case 0x65: // FX65 | LD Vx, [I]
			return m.loadRegs(addr, op, x)
		default:
			return &OpcodeError{Opcode: op, Address: addr}
		}
	}
	return nil
}

// skipIf advances PC over the next instruction when cond holds.
func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC = (m.PC + 2) & addrMask
	}
}

// arith handles the 8XYN group. The flag writes happen after the value
// computation reads its inputs, so VF as an operand still sees its
// pre-instruction value.
func (m *Machine) arith(addr, op uint16, x, y, n uint8) error {
	switch n {
	case 0x0: // 8XY0 | LD Vx, Vy
		m.V[x] = m.V[y]
	case 0x1: // 8XY1 | OR Vx, Vy
		m.V[x] |= m.V[y]
	case 0x2: // 8XY2 | AND Vx, Vy
		m.V[x] &= m.V[y]
	case 0x3: // 8XY3 | XOR Vx, Vy
		m.V[x] ^= m.V[y]
	case 0x4: // 8XY4 | ADD Vx, Vy, VF = carry
		sum := uint16(m.V[x]) + uint16(m.V[y])
		m.V[x] = uint8(sum)
		m.V[0xF] = boolFlag(sum > 0xFF)
	case 0x5: // 8XY5 | SUB Vx, Vy, VF = not borrow
		notBorrow := boolFlag(m.V[x] >= m.V[y])
		m.V[x] -= m.V[y]
		m.V[0xF] = notBorrow
	case 0x6: // 8XY6 | SHR Vx, VF = shifted-out bit
		lsb := m.V[x] & 0x01
		m.V[x] >>= 1
		m.V[0xF] = lsb
	case 0x7: // 8XY7 | SUBN Vx, Vy, VF = not borrow
		notBorrow := boolFlag(m.V[y] > m.V[x])
		m.V[x] = m.V[y] - m.V[x]
		m.V[0xF] = notBorrow
	case 0xE: // 8XYE | SHL Vx, VF = shifted-out bit
		msb := m.V[x] >> 7
		m.V[x] <<= 1
		m.V[0xF] = msb
	default:
		return &OpcodeError{Opcode: op, Address: addr}
	}
	return nil
}

// call pushes the return address (already past the CALL) and jumps.
func (m *Machine) call(addr, op, nnn uint16) error {
	if m.SP >= StackSize {
		return &StackError{Opcode: op, Address: addr, SP: m.SP}
	}
	m.Stack[m.SP] = m.PC
	m.SP++
	m.PC = nnn
	return nil
}

func (m *Machine) ret(addr, op uint16) error {
	if m.SP == 0 {
		return &StackError{Opcode: op, Address: addr, SP: m.SP}
	}
	m.SP--
	m.PC = m.Stack[m.SP]
	return nil
}

// drw XOR-blits an n-row, 8-column sprite from memory[I..I+n) at
// (Vx, Vy). Coordinates wrap at the display edges. VF is set once any
// lit target cell is hit and stays set for the rest of the draw.
func (m *Machine) drw(addr, op uint16, x, y, n uint8) error {
	end := uint32(m.I) + uint32(n)
	if end > MemorySize {
		return &MemoryError{Opcode: op, Address: addr, Target: end - 1}
	}

	m.V[0xF] = 0
	px, py := m.V[x], m.V[y]
	for row := uint8(0); row < n; row++ {
		sprite := m.memory[m.I+uint16(row)]
		for col := uint8(0); col < 8; col++ {
			if sprite&(0x80>>col) == 0 {
				continue
			}
			cx := (int(px) + int(col)) % DisplayWidth
			cy := (int(py) + int(row)) % DisplayHeight
			cell := &m.display[cy*DisplayWidth+cx]
			if *cell != 0 {
				m.V[0xF] = 1
			}
			*cell ^= 1
		}
	}
	return nil
}

// waitKey blocks until any keypad key is down, re-querying the input
// source on every iteration, then stores the lowest pressed key index.
// This is a deliberate busy poll: the instruction owns the machine
// until a key arrives.
func (m *Machine) waitKey(x uint8) {
	for {
		if m.input != nil {
			m.input.ReadKeys(&m.keys)
		}
		for i := 0; i < KeypadSize; i++ {
			if m.keys[i] {
				m.V[x] = uint8(i)
				return
			}
		}
	}
}

// bcd stores the decimal digits of Vx at memory[I..I+2].
func (m *Machine) bcd(addr, op uint16, x uint8) error {
	end := uint32(m.I) + 3
	if end > MemorySize {
		return &MemoryError{Opcode: op, Address: addr, Target: end - 1}
	}
	m.memory[m.I] = m.V[x] / 100
	m.memory[m.I+1] = (m.V[x] % 100) / 10
	m.memory[m.I+2] = m.V[x] % 10
	return nil
}

// storeRegs writes V0..Vx to memory[I..I+x], then advances I past the
// block.
func (m *Machine) storeRegs(addr, op uint16, x uint8) error {
	end := uint32(m.I) + uint32(x) + 1
	if end > MemorySize {
		return &MemoryError{Opcode: op, Address: addr, Target: end - 1}
	}
	for i := uint8(0); i <= x; i++ {
		m.memory[m.I+uint16(i)] = m.V[i]
	}
	m.I += uint16(x) + 1
	return nil
}

// loadRegs is the inverse of storeRegs.
func (m *Machine) loadRegs(addr, op uint16, x uint8) error {
	end := uint32(m.I) + uint32(x) + 1
	if end > MemorySize {
		return &MemoryError{Opcode: op, Address: addr, Target: end - 1}
	}
	for i := uint8(0); i <= x; i++ {
		m.V[i] = m.memory[m.I+uint16(i)]
	}
	m.I += uint16(x) + 1
	return nil
}

func boolFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
