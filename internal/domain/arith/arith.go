// Package arith implements the number routines served by the bfhl endpoint.
//
// All functions are pure and safe for concurrent use. Results that can
// outgrow int64 (Fibonacci terms, LCM folds) are returned as *big.Int so the
// JSON encoder writes exact integers.
package arith

import (
	"math/big"

	"github.com/cockroachdb/errors"
)

// trialDivisionLimit bounds the inputs checked by plain trial division.
// Larger values go through big.Int.ProbablyPrime(0), which is exact below 2^64.
const trialDivisionLimit = 1 << 32

// Sentinel kinds for arithmetic errors.
var (
	ErrEmptyInput      = errors.New("empty input")
	ErrTermsOutOfRange = errors.New("term count out of range")
)

// Fibonacci returns the first n terms of 0, 1, 1, 2, 3, ...
func Fibonacci(n int) ([]*big.Int, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrTermsOutOfRange, "n=%d", n)
	}
	out := make([]*big.Int, 0, n)
	a, b := big.NewInt(0), big.NewInt(1)
	for i := 0; i < n; i++ {
		out = append(out, new(big.Int).Set(a))
		a.Add(a, b)
		a, b = b, a
	}
	return out, nil
}

// IsPrime reports whether n is prime. Values below 2 are not prime.
func IsPrime(n int64) bool {
	if n < 2 {
		return false
	}
	if n >= trialDivisionLimit {
		return big.NewInt(n).ProbablyPrime(0)
	}
	for i := int64(2); i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// FilterPrimes returns the primes of values in their original order.
// The result is never nil.
func FilterPrimes(values []int64) []int64 {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		if IsPrime(v) {
			out = append(out, v)
		}
	}
	return out
}

// GCD returns the greatest common divisor of |a| and |b|. GCD(0, 0) is 0.
func GCD(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}

// LCM returns |a*b| / gcd(a, b), or 0 when either operand is 0.
func LCM(a, b *big.Int) *big.Int {
	g := GCD(a, b)
	if g.Sign() == 0 {
		return new(big.Int)
	}
	p := new(big.Int).Mul(a, b)
	p.Abs(p)
	return p.Quo(p, g)
}

// LCMAll folds LCM left to right over values. A single value is returned
// unchanged.
func LCMAll(values []int64) (*big.Int, error) {
	if len(values) == 0 {
		return nil, ErrEmptyInput
	}
	acc := big.NewInt(values[0])
	for _, v := range values[1:] {
		acc = LCM(acc, big.NewInt(v))
	}
	return acc, nil
}

// HCF folds GCD left to right over values and stops once the running
// divisor reaches 1. A single value is returned unchanged.
func HCF(values []int64) (*big.Int, error) {
	if len(values) == 0 {
		return nil, ErrEmptyInput
	}
	acc := big.NewInt(values[0])
	one := big.NewInt(1)
	for _, v := range values[1:] {
		acc = GCD(acc, big.NewInt(v))
		if acc.Cmp(one) == 0 {
			break
		}
	}
	return acc, nil
}
