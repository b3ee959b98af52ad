// Command fpfma is a thin CLI adapter over the fpfma reference model: it
// exposes encode/decode/fma/tile as subcommands, the nearest in-scope
// analogue of pipe.py's interactive cocotb harness, without reimplementing
// the hardware DUT harness itself.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zerfoo/fpfma"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fpfma",
		Short: "fpfma — reference model for a reduced-precision FMA tensor tile",
	}
	root.AddCommand(newEncodeCmd(), newDecodeCmd(), newFMACmd(), newTileCmd())
	return root
}

func parseFormat(s string) (fpfma.Format, error) {
	switch strings.ToUpper(s) {
	case "FP16":
		return fpfma.FP16, nil
	case "E5M2":
		return fpfma.E5M2, nil
	case "E4M3":
		return fpfma.E4M3, nil
	default:
		return 0, fmt.Errorf("unrecognized format %q (want FP16, E5M2 or E4M3)", s)
	}
}

func newEncodeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "encode [value]",
		Short: "Round a real number to the nearest code point of a format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parsing value %q: %w", args[0], err)
			}
			bits := fpfma.Encode(f, x)
			d := fpfma.Descriptor(f)
			fmt.Printf("%s\n", fpfma.FormatHex(bits, d.Width))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "FP16", "target format: FP16, E5M2 or E4M3")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "decode [hex-bits]",
		Short: "Decode an encoded hex value to its real value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFormat(format)
			if err != nil {
				return err
			}
			v := fpfma.DecodeHex(f, args[0])
			fmt.Printf("%g\n", v)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "FP16", "source format: FP16, E5M2 or E4M3")
	return cmd
}

func newFMACmd() *cobra.Command {
	var aFmt, bFmt, cHex string
	var half bool
	cmd := &cobra.Command{
		Use:   "fma [a-hex] [b-hex]",
		Short: "Compute FMA(A, B, C) -> FP16 (or E5M2 with --half)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			af, err := parseFormat(aFmt)
			if err != nil {
				return err
			}
			bf, err := parseFormat(bFmt)
			if err != nil {
				return err
			}
			aBits := fpfma.ParseHex(args[0], fpfma.Descriptor(af).Width)
			bBits := fpfma.ParseHex(args[1], fpfma.Descriptor(bf).Width)

			var cBits uint16
			cPresent := cHex != ""
			if cPresent {
				cBits = fpfma.ParseHex(cHex, 16)
			}

			out := fpfma.FMA(af, aBits, bf, bBits, cBits, cPresent, half)
			outFmt := fpfma.FP16
			if half {
				outFmt = fpfma.E5M2
			}
			fmt.Printf("%s\n", fpfma.FormatHex(out, fpfma.Descriptor(outFmt).Width))
			return nil
		},
	}
	cmd.Flags().StringVar(&aFmt, "a-format", "E5M2", "format of A: E5M2 or E4M3")
	cmd.Flags().StringVar(&bFmt, "b-format", "E5M2", "format of B: E5M2 or E4M3")
	cmd.Flags().StringVar(&cHex, "c", "", "FP16 hex accumulator C (omit for +0)")
	cmd.Flags().BoolVar(&half, "half", false, "round the sum to E5M2 instead of FP16")
	return cmd
}

func newTileCmd() *cobra.Command {
	tileCmd := &cobra.Command{
		Use:   "tile",
		Short: "Drive the 2x2 systolic tile's block protocol",
	}
	tileCmd.AddCommand(newTileRunCmd())
	return tileCmd
}

// newTileRunCmd steps a freshly-reset tile once with the given block and
// prints the resulting output block and accumulator state, the nearest
// in-scope analogue of pipe.py's interactive drive loop, scoped to a
// single step since the CLI has no persistent session to thread tile
// state through across invocations.
func newTileRunCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "run [col-hex] [row-hex] [col-ctrl-bin] [row-ctrl-bin]",
		Short: "Step the tile once and print the resulting block and state",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := fpfma.TileReset()
			if reset {
				fmt.Printf("reset -> col=0000 row=0000 col_ctrl=0000 row_ctrl=0000\n")
			}
			col := fpfma.ParseHex(args[0], 16)
			row := fpfma.ParseHex(args[1], 16)
			colCtrl := fpfma.ParseBin(args[2], 4)
			rowCtrl := fpfma.ParseBin(args[3], 4)

			in := fpfma.Block{Col: col, Row: row, ColCtrl: uint8(colCtrl), RowCtrl: uint8(rowCtrl)}
			next, out := fpfma.TileStep(state, in, true)

			fmt.Printf("col=%04x row=%04x col_ctrl=%04b row_ctrl=%04b\n",
				out.Col, out.Row, out.ColCtrl, out.RowCtrl)
			fmt.Printf("C0=%04x C1=%04x C2=%04x C3=%04x\n",
				next.C[0], next.C[1], next.C[2], next.C[3])
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "print the reset state before stepping")
	return cmd
}
