// Package rv provides a uniform representation of RISC-V disassembly
// addresses and the static classification of instruction mnemonics used
// throughout the CFG reconstruction engine.
package rv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Addr is the address of an instruction, as it appears in the leading
// token of a disassembly line (without the trailing colon).
type Addr uint64

// Address size in number of bits.
const addrSize = 64

// String returns the hexadecimal string representation of v, without a
// leading "0x" and without a trailing colon, matching the disassembly
// format the engine reads from.
func (v Addr) String() string {
	return fmt.Sprintf("%x", uint64(v))
}

// ParseAddr parses the leading token of a disassembly line (or a branch
// operand) into an Addr. Both forms "<hex>" and "<hex>:" are accepted; a
// leading "0x" is stripped if present.
func ParseAddr(s string) (Addr, error) {
	s = strings.TrimSuffix(s, ":")
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	x, err := strconv.ParseUint(s, 16, addrSize)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return Addr(x), nil
}

// Addrs implements sort.Interface, sorting addresses in ascending order.
type Addrs []Addr

func (as Addrs) Len() int           { return len(as) }
func (as Addrs) Swap(i, j int)      { as[i], as[j] = as[j], as[i] }
func (as Addrs) Less(i, j int) bool { return as[i] < as[j] }
