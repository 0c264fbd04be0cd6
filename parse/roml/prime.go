package roml

import (
	"math"
	"sync"
)

// sieveLimit is the largest integer answered from the sieve table.
const sieveLimit = 10000

// primeSieve is built on first use and only read afterwards.
var primeSieve = sync.OnceValue(func() []bool {
	composite := make([]bool, sieveLimit+1)
	composite[0], composite[1] = true, true
	for i := 2; i*i <= sieveLimit; i++ {
		if composite[i] {
			continue
		}
		for j := i * i; j <= sieveLimit; j += i {
			composite[j] = true
		}
	}
	return composite
})

// IsPrime reports whether n is a prime integer. Non-integers, negatives,
// NaN and infinities are never prime.
func IsPrime(n float64) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 2 || n != math.Trunc(n) {
		return false
	}
	if n <= sieveLimit {
		return !primeSieve()[int(n)]
	}
	// floats above 2^53 are all even
	if n > 1<<53 {
		return false
	}
	u := uint64(n)
	if u%2 == 0 || u%3 == 0 {
		return false
	}
	limit := uint64(math.Sqrt(n))
	for d := uint64(5); d <= limit; d += 6 {
		if u%d == 0 || u%(d+2) == 0 {
			return false
		}
	}
	return true
}

// ContainsPrime reports whether v, recursively, holds a prime Number.
// Strings never count, even when they look numeric.
func ContainsPrime(v Value) bool {
	switch v.kind {
	case KindNumber:
		return IsPrime(v.numVal)
	case KindList:
		for _, item := range v.items {
			if ContainsPrime(item) {
				return true
			}
		}
	case KindMap:
		for _, e := range v.entries {
			if ContainsPrime(e.Value) {
				return true
			}
		}
	}
	return false
}
