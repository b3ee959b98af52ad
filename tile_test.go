package fpfma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ctrlFor returns the (col_ctrl, row_ctrl) nibble pair that tileAddress
// decodes back to addr.
func ctrlFor(addr int) (colCtrl, rowCtrl uint8) {
	table := map[int][2]uint8{
		0: {0x0, 0x0},
		1: {0x0, 0x8},
		2: {0x4, 0x8},
		3: {0x0, 0xC},
		4: {0x4, 0xC},
		5: {0x8, 0x0},
		6: {0x8, 0x4},
		7: {0xC, 0x0},
	}
	pair := table[addr]
	return pair[0], pair[1]
}

func TestCtrlForRoundTripsThroughTileAddress(t *testing.T) {
	for addr := 0; addr <= 7; addr++ {
		c, r := ctrlFor(addr)
		require.Equal(t, addr, tileAddress(c, r), "ctrlFor/tileAddress disagree for address %d", addr)
	}
}

// TestTileResetZeroesEverything is scenario S9: after reset, the next
// output block is all zeros regardless of inputs.
func TestTileResetZeroesEverything(t *testing.T) {
	state := TileReset()
	assert.Equal(t, TileState{}, state)

	c, r := ctrlFor(0)
	in := Block{Col: 0xBEEF, Row: 0xCAFE, ColCtrl: c, RowCtrl: r}
	_, out := TileStep(state, in, true)
	assert.Equal(t, Block{}, out, "first block after reset must be all zero regardless of input")
}

// TestTileStepRstNLow verifies the active-low reset line zeros the tile
// mid-stream regardless of accumulated state or current input.
func TestTileStepRstNLow(t *testing.T) {
	c, r := ctrlFor(6)
	state, _ := TileStep(TileReset(), Block{Col: 0x1234, Row: 0x5678, ColCtrl: c, RowCtrl: r}, true)
	require.NotEqual(t, TileState{}, state, "sanity: state should be nonzero before reset")

	next, out := TileStep(state, Block{Col: 0xFFFF, Row: 0xFFFF, ColCtrl: 0xF, RowCtrl: 0xF}, false)
	assert.Equal(t, TileState{}, next)
	assert.Equal(t, Block{}, out)
}

// TestTilePassthroughDelay checks that a passthrough block's
// (col_out,row_out,col_ctrl_out,row_ctrl_out) equals the previous block's
// inputs, one block delayed -- regardless of what operation the previous
// block performed.
func TestTilePassthroughDelay(t *testing.T) {
	state0 := TileReset()

	loColCtrl, loRowCtrl := ctrlFor(6)
	block1 := Block{Col: 0x1111, Row: 0x2222, ColCtrl: loColCtrl, RowCtrl: loRowCtrl}
	state1, _ := TileStep(state0, block1, true)

	passColCtrl, passRowCtrl := ctrlFor(0)
	block2 := Block{Col: 0xAAAA, Row: 0xBBBB, ColCtrl: passColCtrl, RowCtrl: passRowCtrl}
	_, out2 := TileStep(state1, block2, true)

	assert.Equal(t, block1.Col, out2.Col)
	assert.Equal(t, block1.Row, out2.Row)
	assert.Equal(t, block1.ColCtrl, out2.ColCtrl)
	assert.Equal(t, block1.RowCtrl, out2.RowCtrl)
}

// TestTileFMABlock checks that an A/B block computes the four FMAs over
// the nibble-pair operands.
func TestTileFMABlock(t *testing.T) {
	one := Encode(E5M2, 1.0)
	c, r := ctrlFor(1) // A=E5M2, B=E5M2
	in := Block{Col: one<<8 | one, Row: one<<8 | one, ColCtrl: c, RowCtrl: r}

	state1, _ := TileStep(TileReset(), in, true)
	want1 := FMA(E5M2, one, E5M2, one, 0, false, false) // == Encode(FP16, 1.0)
	assert.Equal(t, want1, state1.C[0])
	assert.Equal(t, want1, state1.C[1])
	assert.Equal(t, want1, state1.C[2])
	assert.Equal(t, want1, state1.C[3])

	// A second identical block accumulates against the updated C.
	state2, _ := TileStep(state1, in, true)
	want2 := Encode(FP16, 2.0)
	assert.Equal(t, want2, state2.C[0])
	assert.Equal(t, want2, state2.C[1])
	assert.Equal(t, want2, state2.C[2])
	assert.Equal(t, want2, state2.C[3])
}

// TestTileCLowCHighWriteAndReadback is the Go port of test.py's
// test_shift/test_C scenarios: write C0/C1, write C2/C3, then read each
// back on a later block and confirm the one-block output delay holds
// across mixed address types.
func TestTileCLowCHighWriteAndReadback(t *testing.T) {
	state0 := TileReset()

	loC, loR := ctrlFor(6)
	hiC, hiR := ctrlFor(7)

	c0 := Encode(FP16, 1.0)
	c1 := Encode(FP16, 2.0)
	c2 := Encode(FP16, 3.0)
	c3 := Encode(FP16, 4.0)

	// Block 1: write C0/C1.
	state1, out1 := TileStep(state0, Block{Col: c0, Row: c1, ColCtrl: loC, RowCtrl: loR}, true)
	assert.Equal(t, Block{}, out1, "writing C0/C1 from a fresh reset echoes the old (zero) C0/C1")
	assert.Equal(t, c0, state1.C[0])
	assert.Equal(t, c1, state1.C[1])

	// Block 2: write C2/C3; this block's output echoes the prior C2/C3
	// (still zero) and the previous block's control nibbles.
	state2, out2 := TileStep(state1, Block{Col: c2, Row: c3, ColCtrl: hiC, RowCtrl: hiR}, true)
	assert.Equal(t, uint16(0), out2.Col)
	assert.Equal(t, uint16(0), out2.Row)
	assert.Equal(t, loC, out2.ColCtrl)
	assert.Equal(t, loR, out2.RowCtrl)
	assert.Equal(t, c2, state2.C[2])
	assert.Equal(t, c3, state2.C[3])

	// Block 3: a C-Low read (writing zeros as the new C0/C1) surfaces the
	// C0/C1 written in block 1.
	state3, out3 := TileStep(state2, Block{Col: 0, Row: 0, ColCtrl: loC, RowCtrl: loR}, true)
	assert.Equal(t, c0, out3.Col)
	assert.Equal(t, c1, out3.Row)
	assert.Equal(t, hiC, out3.ColCtrl)
	assert.Equal(t, hiR, out3.RowCtrl)
	assert.Equal(t, uint16(0), state3.C[0], "C0/C1 cleared by the zero write in block 3")
	assert.Equal(t, uint16(0), state3.C[1])

	// Block 4: a C-High read surfaces the C2/C3 written in block 2.
	_, out4 := TileStep(state3, Block{Col: 0, Row: 0, ColCtrl: hiC, RowCtrl: hiR}, true)
	assert.Equal(t, c2, out4.Col)
	assert.Equal(t, c3, out4.Row)
}

// TestTileCE5Readout is scenario S10's shape with the C-E5 address
// (5): the four FP16 accumulators, set via C-Low/C-High, are read back
// quantized to E5M2 and packed two per output word.
func TestTileCE5Readout(t *testing.T) {
	state0 := TileReset()
	loC, loR := ctrlFor(6)
	hiC, hiR := ctrlFor(7)
	e5C, e5R := ctrlFor(5)

	state1, _ := TileStep(state0, Block{Col: Encode(FP16, 1.0), Row: Encode(FP16, 2.0), ColCtrl: loC, RowCtrl: loR}, true)
	state2, _ := TileStep(state1, Block{Col: Encode(FP16, 3.0), Row: Encode(FP16, 4.0), ColCtrl: hiC, RowCtrl: hiR}, true)

	_, out := TileStep(state2, Block{Col: 0, Row: 0, ColCtrl: e5C, RowCtrl: e5R}, true)

	wantCol := Encode(E5M2, 1.0)<<8 | Encode(E5M2, 2.0)
	wantRow := Encode(E5M2, 3.0)<<8 | Encode(E5M2, 4.0)
	assert.Equal(t, wantCol, out.Col)
	assert.Equal(t, wantRow, out.Row)
}

func TestTileAddressInvariantOnUnknownCombination(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for an undefined (col_ctrl, row_ctrl) address combination")
		}
	}()
	tileAddress(0xC, 0xC) // (3,3): not in the address table
}
