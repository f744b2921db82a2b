// Package dhprime validates a server-proposed DH prime and generator
// against the safe-prime and quadratic-residue conditions of the
// MTProto handshake (§4.6).
package dhprime

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cvsouth/mtproto-go/primecache"
)

// millerRabinRounds mirrors the source's 64-witness Miller-Rabin
// budget; math/big.ProbablyPrime(n) runs n rounds plus a
// deterministic Baillie-PSW style check.
const millerRabinRounds = 64

var (
	// ErrWrongBitLength is returned when dh_prime is not exactly 2048
	// bits.
	ErrWrongBitLength = errors.New("dhprime: dh_prime is not 2048 bits")
	// ErrBadGenerator is returned when g is outside {2,3,4,5,6,7} or
	// fails its quadratic-residue condition.
	ErrBadGenerator = errors.New("dhprime: g fails its residue condition")
	// ErrNotSafePrime is returned when dh_prime or (dh_prime-1)/2 is
	// not prime.
	ErrNotSafePrime = errors.New("dhprime: dh_prime is not a safe prime")
)

// Validate checks dhPrime (big-endian) and g against §4.6, consulting
// cache before running Miller-Rabin and recording the verdict on a
// cache miss.
func Validate(dhPrime []byte, g int32, cache *primecache.Cache) error {
	prime := new(big.Int).SetBytes(dhPrime)

	if prime.BitLen() != 2048 {
		return ErrWrongBitLength
	}

	if !residueOK(prime, g) {
		return fmt.Errorf("%w: g=%d", ErrBadGenerator, g)
	}

	switch cache.Lookup(dhPrime) {
	case primecache.Good:
		return nil
	case primecache.Bad:
		return ErrNotSafePrime
	}

	if !prime.ProbablyPrime(millerRabinRounds) {
		cache.Record(dhPrime, false)
		return ErrNotSafePrime
	}
	half := new(big.Int).Sub(prime, big.NewInt(1))
	half.Div(half, big.NewInt(2))
	if !half.ProbablyPrime(millerRabinRounds) {
		cache.Record(dhPrime, false)
		return ErrNotSafePrime
	}
	cache.Record(dhPrime, true)
	return nil
}

// residueOK implements the per-generator quadratic-residue table
// (§4.6 step 2).
func residueOK(prime *big.Int, g int32) bool {
	mod := func(m int64) *big.Int {
		return new(big.Int).Mod(prime, big.NewInt(m))
	}
	eq := func(r *big.Int, vals ...int64) bool {
		for _, v := range vals {
			if r.Cmp(big.NewInt(v)) == 0 {
				return true
			}
		}
		return false
	}

	switch g {
	case 2:
		return eq(mod(8), 7)
	case 3:
		return eq(mod(3), 2)
	case 4:
		return true
	case 5:
		return eq(mod(5), 1, 4)
	case 6:
		return eq(mod(24), 19, 23)
	case 7:
		return eq(mod(7), 3, 5, 6)
	default:
		return false
	}
}
