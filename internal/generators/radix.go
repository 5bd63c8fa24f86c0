package generators

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/conform/internal/gen"
)

// RadixEntry describes how many digits of a radix fit in one uint32 chunk.
type RadixEntry struct {
	Radix  int
	Digits int
	Power  uint64
}

// RadixTable returns entries for radix 2 through 36. Digits is the largest
// d with radix^d <= MaxUint32 and Power is radix^Digits.
func RadixTable() []RadixEntry {
	var out []RadixEntry
	for radix := 2; radix <= 36; radix++ {
		digits, power := 0, uint64(1)
		for power*uint64(radix) <= math.MaxUint32 {
			power *= uint64(radix)
			digits++
		}
		out = append(out, RadixEntry{Radix: radix, Digits: digits, Power: power})
	}
	return out
}

// WriteRadix emits the digit-count and power arrays indexed by radix.
func WriteRadix(w *gen.CodeWriter) error {
	table := RadixTable()
	digits := []string{"0", "0"}
	powers := []string{"0", "0"}
	for _, e := range table {
		digits = append(digits, strconv.Itoa(e.Digits))
		powers = append(powers, strconv.FormatUint(e.Power, 10))
	}
	w.Write("private static readonly uint[] maxCharsPerDigit = { %s };", strings.Join(digits, ", "))
	w.Write("private static readonly uint[] groupRadixValues = { %s };", strings.Join(powers, ", "))
	return nil
}
