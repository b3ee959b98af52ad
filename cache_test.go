package fpfma

import "testing"

func TestLookupTableAgreesWithBitSearch(t *testing.T) {
	for _, f := range []Format{E5M2, E4M3} {
		d := Descriptor(f)
		maxCode := uint32(1<<uint(d.Width)) - 1
		for bits := uint32(0); bits <= maxCode; bits++ {
			b := uint16(bits)
			v := Decode(f, b)
			if v != v { // NaN
				continue
			}
			want := b
			if v == 0 {
				want = 0 // -0 canonicalizes to +0
			}
			got := Encode(f, v)
			if got != want {
				t.Fatalf("%s: Encode(Decode(0x%x)) via table = 0x%x, want 0x%x", f, b, got, want)
			}
		}
	}
}

func TestLookupTableSortedAndFinite(t *testing.T) {
	for name, tbl := range map[string]lookupTable{"E5M2": e5m2Table, "E4M3": e4m3Table} {
		for i := 1; i < len(tbl.entries); i++ {
			if tbl.entries[i-1].value > tbl.entries[i].value {
				t.Fatalf("%s lookup table not sorted at index %d", name, i)
			}
		}
	}
}
