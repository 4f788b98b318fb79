package probe

import (
	"encoding/json"
	"math/rand/v2"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/bfhl/internal/domain/arith"
)

// Case kinds produced by the generator.
const (
	KindFibonacci = "fibonacci"
	KindPrime     = "prime"
	KindLCM       = "lcm"
	KindHCF       = "hcf"
	KindAI        = "ai"
	KindInvalid   = "invalid"
)

// Value ranges for generated operands.
const (
	maxFibonacciN   = 90
	maxPrimeList    = 12
	maxPrimeValue   = 500
	maxFoldList     = 5
	maxFoldValue    = 60
	invalidEveryNth = 5
)

// invalidBodies always fail validation, whatever the fold mode.
var invalidBodies = []string{ //nolint:gochecknoglobals // fixed corpus
	`{"fibonacci": 3, "prime": [2]}`,
	`{}`,
	`[1, 2, 3]`,
	`{"fibonacci": 0}`,
	`{"fibonacci": -7}`,
	`{"fibonacci": 2.5}`,
	`{"fibonacci": "5"}`,
	`{"lcm": []}`,
	`{"hcf": [12, "18"]}`,
	`{"prime": 17}`,
	`{"AI": ""}`,
	`{"AI": "   "}`,
	`{"Fibonacci": 5}`,
	`{"square": [2]}`,
	`not json at all`,
}

var aiQuestions = []string{ //nolint:gochecknoglobals // fixed corpus
	"What is the capital of France?",
	"Which planet is known as the red planet?",
	"What is the largest ocean on Earth?",
}

// Generate builds n cases deterministically from seed. Every fifth case is
// invalid; the rest rotate over the operations.
func Generate(n int, seed uint64, skipAI bool) []Case {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	kinds := []string{KindFibonacci, KindPrime, KindLCM, KindHCF}
	if !skipAI {
		kinds = append(kinds, KindAI)
	}

	cases := make([]Case, 0, n)
	for i := 0; i < n; i++ {
		kind := KindInvalid
		if (i+1)%invalidEveryNth != 0 {
			kind = kinds[rng.IntN(len(kinds))]
		}
		c := generateCase(rng, kind)
		c.ID = uuid.NewString()
		cases = append(cases, c)
	}
	return cases
}

func generateCase(rng *rand.Rand, kind string) Case {
	switch kind {
	case KindFibonacci:
		n := 1 + rng.IntN(maxFibonacciN)
		seq, _ := arith.Fibonacci(n)
		return okCase(kind, map[string]any{"fibonacci": n}, seq)

	case KindPrime:
		values := randomInts(rng, rng.IntN(maxPrimeList+1), -10, maxPrimeValue)
		return okCase(kind, map[string]any{"prime": values}, arith.FilterPrimes(values))

	case KindLCM:
		values := randomInts(rng, 2+rng.IntN(maxFoldList-1), 1, maxFoldValue)
		lcm, _ := arith.LCMAll(values)
		return okCase(kind, map[string]any{"lcm": values}, lcm)

	case KindHCF:
		values := randomInts(rng, 2+rng.IntN(maxFoldList-1), 1, maxFoldValue)
		hcf, _ := arith.HCF(values)
		return okCase(kind, map[string]any{"hcf": values}, hcf)

	case KindAI:
		q := aiQuestions[rng.IntN(len(aiQuestions))]
		body, _ := json.Marshal(map[string]any{"AI": q})
		// The answer depends on the provider, so only the status is checked.
		return Case{Kind: kind, Body: body, WantStatus: http.StatusOK}

	default:
		body := invalidBodies[rng.IntN(len(invalidBodies))]
		return Case{Kind: KindInvalid, Body: json.RawMessage(body), WantStatus: http.StatusBadRequest}
	}
}

func okCase(kind string, body map[string]any, want any) Case {
	b, _ := json.Marshal(body)
	w, _ := json.Marshal(want)
	return Case{Kind: kind, Body: b, WantStatus: http.StatusOK, WantData: w}
}

func randomInts(rng *rand.Rand, n int, lo, hi int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = lo + rng.Int64N(hi-lo+1)
	}
	return out
}
