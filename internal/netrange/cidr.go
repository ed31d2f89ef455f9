// Package netrange expands CIDR notation into the addresses it contains.
//
// Expansion is lazy: a Block yields addresses one at a time in ascending
// numeric order, so even an IPv6 /64 costs nothing until it is iterated.
// Network and broadcast addresses are included; no address is skipped.
package netrange

import (
	"fmt"
	"iter"
	"math/big"
	"net/netip"
	"strings"
)

// ParseError reports a string that is not valid CIDR notation.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid CIDR %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Block is a parsed network prefix.
type Block struct {
	prefix netip.Prefix
}

// ParseCIDR parses "address/prefix-length". Host bits are cleared, so
// "192.168.1.5/30" is the block 192.168.1.4/30.
func ParseCIDR(s string) (Block, error) {
	s = strings.TrimSpace(s)
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return Block{}, &ParseError{Input: s, Err: err}
	}
	return Block{prefix: prefix.Masked()}, nil
}

// String returns the masked prefix, e.g. "192.168.1.0/30".
func (b Block) String() string {
	return b.prefix.String()
}

// Size returns the number of addresses in the block. It is a big.Int
// because an IPv6 block can hold up to 2^128 addresses.
func (b Block) Size() *big.Int {
	hostBits := b.prefix.Addr().BitLen() - b.prefix.Bits()
	return new(big.Int).Lsh(big.NewInt(1), uint(hostBits))
}

// Addrs returns every address in the block in ascending order. The
// sequence can be ranged over any number of times; each pass starts from
// the network address.
func (b Block) Addrs() iter.Seq[netip.Addr] {
	return func(yield func(netip.Addr) bool) {
		if !b.prefix.IsValid() {
			return
		}
		for addr := b.prefix.Addr(); addr.IsValid() && b.prefix.Contains(addr); addr = addr.Next() {
			if !yield(addr) {
				return
			}
		}
	}
}
