package matching

import (
	"math/rand"
	"testing"

	"github.com/orbit-exchange/matchcore/internal/engine/pool"
)

// BenchmarkSubmitLimit mirrors the original C++ implementation's
// throughput benchmark: a stream of limit orders at random prices in a
// tight band around a midpoint, so a good fraction of them cross and
// generate trades rather than only ever resting.
func BenchmarkSubmitLimit(b *testing.B) {
	e := New(b.N + 1)
	rng := rand.New(rand.NewSource(42))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		side := pool.Buy
		if rng.Intn(2) == 1 {
			side = pool.Sell
		}
		price := pool.Price(9900 + rng.Intn(201))
		qty := pool.Quantity(1 + rng.Intn(100))
		if _, err := e.SubmitLimit(pool.OrderID(i), side, price, qty); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSubmitLimitCrossing isolates the matching-heavy path: every
// order is submitted at the same price and size as the orders of a deep
// resting book on the opposite side, so every submission fully fills
// against exactly one resting order and nothing rests.
func BenchmarkSubmitLimitCrossing(b *testing.B) {
	e := New(b.N*2 + 1)
	for i := 0; i < b.N; i++ {
		if _, err := e.SubmitLimit(pool.OrderID(i), pool.Sell, 10000, 10); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.SubmitLimit(pool.OrderID(b.N+i), pool.Buy, 10000, 10); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCancel measures the O(1) cancel path in isolation: b.N
// resting orders are built up front, then each is cancelled in turn.
func BenchmarkCancel(b *testing.B) {
	e := New(b.N + 1)
	ids := make([]pool.OrderID, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = pool.OrderID(i)
		if _, err := e.SubmitLimit(ids[i], pool.Buy, pool.Price(9000+i%500), 10); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for _, id := range ids {
		if ok, err := e.Cancel(id); err != nil || !ok {
			b.Fatalf("cancel(%d): ok=%v err=%v", id, ok, err)
		}
	}
}
