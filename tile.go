package fpfma

// Block is one 4-cycle packet of the tile's nibble-serial wire protocol:
// a 16-bit col value, a 16-bit row value, and their 4-bit control
// nibbles, each transmitted MSB-nibble-first over the wire (assembly
// from/to individual nibbles is PackNibbles/UnpackNibbles's job; Block
// already holds the reassembled per-block values).
type Block struct {
	Col     uint16
	Row     uint16
	ColCtrl uint8 // low 4 bits significant
	RowCtrl uint8 // low 4 bits significant
}

// TileState is the tile's only entity with lifecycle beyond a single
// call: four FP16 accumulators and the previous block's inputs, which
// every block but a read-override echoes back out with a one-block delay.
type TileState struct {
	C      [4]uint16 // FP16 bit patterns C0..C3
	prevIn Block
}

// TileReset returns the zeroed state the hardware's active-low reset
// line (rst_n=0) produces: every accumulator and the echoed previous
// block cleared.
func TileReset() TileState {
	return TileState{}
}

// tileAddress decodes the 2-bit (col_ctrl, row_ctrl) address pair into one
// of the eight control addresses the tile recognizes. Only the top two
// bits of each 4-bit control nibble participate in addressing.
func tileAddress(colCtrl, rowCtrl uint8) int {
	c := (colCtrl >> 2) & 0x3
	r := (rowCtrl >> 2) & 0x3
	switch {
	case c == 0 && r == 0:
		return 0 // passthrough
	case c == 0 && r == 2:
		return 1 // A=E5M2, B=E5M2
	case c == 1 && r == 2:
		return 2 // A=E4M3, B=E5M2
	case c == 0 && r == 3:
		return 3 // A=E5M2, B=E4M3
	case c == 1 && r == 3:
		return 4 // A=E4M3, B=E4M3
	case c == 2 && r == 0:
		return 5 // C-E5
	case c == 2 && r == 1:
		return 6 // C-Low
	case c == 3 && r == 0:
		return 7 // C-High
	default:
		invariant(false, "tileAddress", "unrecognized control pair col=%02b row=%02b", c, r)
		return -1
	}
}

func abFormats(addr int) (aFmt, bFmt Format) {
	switch addr {
	case 1:
		return E5M2, E5M2
	case 2:
		return E4M3, E5M2
	case 3:
		return E5M2, E4M3
	case 4:
		return E4M3, E4M3
	default:
		invariant(false, "abFormats", "address %d is not an A/B block", addr)
		return 0, 0
	}
}

// TileStep advances the tile one block. rstN is the active-low reset
// line: when false, the tile resets to zero state and emits a zero
// block regardless of in.
//
// Otherwise the address embedded in in's control nibbles selects one of:
// an A/B FMA block (addresses 1-4, four FMAs over the nibble-pair
// operands of col/row), a C-E5 readout (address 5, the four accumulators
// quantized to E5M2 and packed two per output word), a C-Low/C-High
// read-write (addresses 6/7, incoming col/row overwrite two accumulators
// while the prior values are emitted on this same block), or passthrough
// (address 0). In every case but the C0..C3 read-side overrides, the
// outputs equal the previous block's inputs delayed by one block.
func TileStep(state TileState, in Block, rstN bool) (TileState, Block) {
	if !rstN {
		return TileState{}, Block{}
	}

	addr := tileAddress(in.ColCtrl, in.RowCtrl)

	out := Block{
		Col:     state.prevIn.Col,
		Row:     state.prevIn.Row,
		ColCtrl: state.prevIn.ColCtrl,
		RowCtrl: state.prevIn.RowCtrl,
	}
	next := state

	switch addr {
	case 1, 2, 3, 4:
		aFmt, bFmt := abFormats(addr)
		a0, a1 := uint16(in.Col>>8), uint16(in.Col&0xFF)
		b0, b1 := uint16(in.Row>>8), uint16(in.Row&0xFF)
		next.C[0] = FMA(aFmt, a0, bFmt, b0, state.C[0], true, false)
		next.C[1] = FMA(aFmt, a1, bFmt, b0, state.C[1], true, false)
		next.C[2] = FMA(aFmt, a0, bFmt, b1, state.C[2], true, false)
		next.C[3] = FMA(aFmt, a1, bFmt, b1, state.C[3], true, false)
	case 5:
		c0 := Encode(E5M2, Decode(FP16, state.C[0]))
		c1 := Encode(E5M2, Decode(FP16, state.C[1]))
		c2 := Encode(E5M2, Decode(FP16, state.C[2]))
		c3 := Encode(E5M2, Decode(FP16, state.C[3]))
		out.Col = c0<<8 | c1
		out.Row = c2<<8 | c3
	case 6:
		out.Col = state.C[0]
		out.Row = state.C[1]
		next.C[0] = in.Col
		next.C[1] = in.Row
	case 7:
		out.Col = state.C[2]
		out.Row = state.C[3]
		next.C[2] = in.Col
		next.C[3] = in.Row
	}

	next.prevIn = in
	return next, out
}
