package dhprime

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cvsouth/mtproto-go/primecache"
)

// generate2048SafePrime draws up to 50 random 2048-bit primes and
// returns the first that satisfies g=2's residue condition (p mod 8 ==
// 7) and whose (p-1)/2 is also prime; if none qualifies, the calling
// test is skipped. This keeps the test self-contained without shipping
// a hardcoded RFC 3526-sized literal.
func generate2048SafePrime(t *testing.T) *big.Int {
	t.Helper()
	for attempt := 0; attempt < 50; attempt++ {
		candidate, err := rand.Prime(rand.Reader, 2048)
		if err != nil {
			t.Fatal(err)
		}
		if new(big.Int).Mod(candidate, big.NewInt(8)).Int64() != 7 {
			continue
		}
		half := new(big.Int).Sub(candidate, big.NewInt(1))
		half.Div(half, big.NewInt(2))
		if half.ProbablyPrime(20) {
			return candidate
		}
	}
	t.Skip("could not find a 2048-bit safe prime within the attempt budget")
	return nil
}

func TestValidateAcceptsSafePrime(t *testing.T) {
	prime := generate2048SafePrime(t)
	cache := primecache.New()
	if err := Validate(prime.Bytes(), 2, cache); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
	if cache.Lookup(prime.Bytes()) != primecache.Good {
		t.Fatal("expected the prime to be cached as Good after validation")
	}
}

func TestValidateRejectsWrongBitLength(t *testing.T) {
	small, _ := rand.Prime(rand.Reader, 512)
	cache := primecache.New()
	if err := Validate(small.Bytes(), 2, cache); err != ErrWrongBitLength {
		t.Fatalf("expected ErrWrongBitLength, got %v", err)
	}
}

func TestValidateRejectsUnknownGenerator(t *testing.T) {
	prime := generate2048SafePrime(t)
	cache := primecache.New()
	if err := Validate(prime.Bytes(), 99, cache); err == nil {
		t.Fatal("expected rejection of an unsupported generator")
	}
}

func TestValidateRejectsNonPrime(t *testing.T) {
	// An obviously composite 2048-bit value: product of two primes.
	p, _ := rand.Prime(rand.Reader, 1024)
	q, _ := rand.Prime(rand.Reader, 1024)
	composite := new(big.Int).Mul(p, q)
	for composite.BitLen() != 2048 {
		composite.Lsh(composite, 1)
	}
	cache := primecache.New()
	err := Validate(composite.Bytes(), 2, cache)
	if err == nil {
		t.Fatal("expected rejection of a composite dh_prime")
	}
}
