// Package bigint implements the Pollard-ρ factorization used to split
// the server's pq composite into its two prime factors, with a native
// uint64 fast path and an arbitrary-precision general path sharing the
// same loop structure.
package bigint

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// ErrNotFound is returned when the iteration budget is exhausted
// without discovering a nontrivial factor.
var ErrNotFound = errors.New("bigint: factor not found")

// maxFastPathBytes is the byte length at or below which Factorize
// tries the native uint64 path first (§4.3 "pq ≤ 2^63 and represented
// in ≤ 8 bytes with high bit clear").
const maxFastPathBytes = 8

// Factorize splits pq (big-endian, minimal encoding) into its two
// prime factors p < q. It dispatches to the 64-bit fast path when pq
// fits in 8 bytes with the high bit clear, and to the arbitrary-
// precision path otherwise.
func Factorize(pq []byte) (p, q []byte, err error) {
	if len(pq) > maxFastPathBytes || (len(pq) == maxFastPathBytes && pq[0]&0x80 != 0) {
		return factorizeBig(pq)
	}

	var v uint64
	for _, b := range pq {
		v = (v << 8) | uint64(b)
	}
	f, err := factorizeFast(v)
	if err != nil {
		return nil, nil, err
	}
	if f <= 1 || v%f != 0 {
		return nil, nil, ErrNotFound
	}
	other := v / f
	if f > other {
		f, other = other, f
	}
	return trimBE64(f), trimBE64(other), nil
}

func trimBE64(v uint64) []byte {
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	out := make([]byte, 8-i)
	copy(out, buf[i:])
	return out
}

// randByteInRange returns a cryptographically random byte value in
// [lo, hi], mirroring the source's gen_u8_in_range(17, 32).
func randByteInRange(lo, hi int) (uint64, error) {
	span := uint64(hi - lo + 1)
	var buf [1]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return uint64(lo) + uint64(buf[0])%span, nil
}

func randUint64() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range buf {
		v = (v << 8) | uint64(b)
	}
	return v, nil
}

// addMulMod computes (c + a*b) % pq without overflow, by doubling a
// and halving b (§4.3's pq_add_mul).
func addMulMod(c, a, b, pq uint64) uint64 {
	for b != 0 {
		if b&1 != 0 {
			c += a
			if c >= pq {
				c -= pq
			}
		}
		a += a
		if a >= pq {
			a -= pq
		}
		b >>= 1
	}
	return c
}

// gcdOdd computes gcd(a, b) using the binary GCD algorithm (§4.3's
// pq_gcd), which the source uses instead of Euclid's algorithm to
// avoid a division per step.
func gcdOdd(a, b uint64) uint64 {
	if a == 0 {
		return b
	}
	for a&1 == 0 {
		a >>= 1
	}
	for {
		switch {
		case a > b:
			a = (a - b) >> 1
			for a&1 == 0 {
				a >>= 1
			}
		case b > a:
			b = (b - a) >> 1
			for b&1 == 0 {
				b >>= 1
			}
		default:
			return a
		}
	}
}

// factorizeFast runs Pollard-ρ with Brent-style reference-point
// refresh entirely in native uint64 arithmetic (§4.3 fast path). It
// returns 0 if pq is out of range, 2 if pq is even, the smaller of the
// two cofactors found by the gcd gate, or 1 when the budget runs out
// without a nontrivial factor; it never returns a "not found" error of
// its own (the caller rejects any result that is not a proper divisor
// of pq).
func factorizeFast(pq uint64) (uint64, error) {
	if pq <= 2 || pq > (1<<63) {
		return 0, nil
	}
	if pq&1 == 0 {
		return 2, nil
	}

	var g uint64
	for i, iter := 0, 0; i < 3 || iter < 1000; i++ {
		q, err := randByteInRange(17, 32)
		if err != nil {
			return 0, err
		}
		q %= pq - 1
		r, err := randUint64()
		if err != nil {
			return 0, err
		}
		x := r%(pq-1) + 1
		y := x

		lim := uint64(1) << (minInt(5, i) + 18)
		for j := uint64(1); j < lim; j++ {
			iter++
			x = addMulMod(q, x, x, pq)
			var z uint64
			if x < y {
				z = pq + x - y
			} else {
				z = x - y
			}
			g = gcdOdd(z, pq)
			if g != 1 {
				break
			}
			if j&(j-1) == 0 {
				y = x
			}
		}
		if g > 1 && g < pq {
			break
		}
	}
	if g != 0 {
		other := pq / g
		if other < g {
			g = other
		}
	}
	return g, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// factorizeBig is factorizeFast's arbitrary-precision twin (§4.3
// general path), used when pq exceeds the 64-bit fast-path range.
func factorizeBig(pqBytes []byte) (p, q []byte, err error) {
	pq := new(big.Int).SetBytes(pqBytes)
	one := big.NewInt(1)

	var found bool
	var a, b, pFactor big.Int
	tmp := new(big.Int)

	for i, iter := 0, 0; !found && (i < 3 || iter < 1000); i++ {
		t, err := randByteInRange(17, 32)
		if err != nil {
			return nil, nil, err
		}
		seed, err := randUint32()
		if err != nil {
			return nil, nil, err
		}
		a.SetUint64(uint64(seed))
		b.Set(&a)

		lim := uint64(1) << (i + 23)
		for j := uint64(1); j < lim; j++ {
			iter++
			tmp.Mul(&a, &a)
			tmp.Mod(tmp, pq)
			tmp.Add(tmp, new(big.Int).SetUint64(t))
			if tmp.Cmp(pq) >= 0 {
				tmp.Sub(tmp, pq)
			}
			a.Set(tmp)

			var diff big.Int
			if a.Cmp(&b) > 0 {
				diff.Sub(&a, &b)
			} else {
				diff.Sub(&b, &a)
			}
			pFactor.GCD(nil, nil, &diff, pq)
			if pFactor.Cmp(one) != 0 {
				found = true
				break
			}
			if j&(j-1) == 0 {
				b.Set(&a)
			}
		}
	}

	if !found {
		return nil, nil, ErrNotFound
	}

	qFactor := new(big.Int).Div(pq, &pFactor)
	pOut, qOut := &pFactor, qFactor
	if pOut.Cmp(qOut) > 0 {
		pOut, qOut = qOut, pOut
	}
	return pOut.Bytes(), qOut.Bytes(), nil
}

func randUint32() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}
