package evaluator

import (
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// templateRNG is the generator behind RANDOM. A seeded PCG keeps
// renders reproducible when Options.Rand supplies a fixed seed.
var (
	templateRNG   *rand.Rand
	templateRNGMu sync.Mutex
)

func init() {
	templateRNG = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

const randomAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomBuiltins(opts Options) []*Builtin {
	rng := func() *rand.Rand {
		if opts.Rand != nil {
			return opts.Rand
		}
		return templateRNG
	}
	return []*Builtin{
		{Name: "number", MinArgs: 2, MaxArgs: 2, Fn: func(args ...Object) Object {
			lo, ok := args[0].(*Integer)
			if !ok {
				return typeError("the lower bound must be an integer, got %s", args[0].Type())
			}
			hi, ok := args[1].(*Integer)
			if !ok {
				return typeError("the upper bound must be an integer, got %s", args[1].Type())
			}
			if lo.Value > hi.Value {
				return typeError("the lower bound %d is above the upper bound %d", lo.Value, hi.Value)
			}
			templateRNGMu.Lock()
			defer templateRNGMu.Unlock()
			span := uint64(hi.Value-lo.Value) + 1
			return &Integer{Value: lo.Value + int64(rng().Uint64N(span))}
		}},
		{Name: "uuid", MinArgs: 0, MaxArgs: 0, Fn: func(args ...Object) Object {
			return &String{Value: uuid.NewString()}
		}},
		{Name: "string", MinArgs: 1, MaxArgs: 1, Fn: func(args ...Object) Object {
			n, ok := args[0].(*Integer)
			if !ok {
				return typeError("the length must be an integer, got %s", args[0].Type())
			}
			if n.Value < 0 {
				return typeError("the length must not be negative")
			}
			templateRNGMu.Lock()
			defer templateRNGMu.Unlock()
			out := make([]byte, n.Value)
			r := rng()
			for i := range out {
				out[i] = randomAlphabet[r.IntN(len(randomAlphabet))]
			}
			return &String{Value: string(out)}
		}},
	}
}
