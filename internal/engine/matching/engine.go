// =============================
// Matchcore Matching Engine
// =============================
// Engine is the public facade over the pool and book packages: the only
// type callers construct directly. It owns the single Pool for a symbol
// and the OrderBook built on top of it, and is the sole releaser of pool
// slots — book.CancelOrder and book.Match only ever unlink orders, never
// release them, so there is exactly one Release call per Acquire.
//
// Not safe for concurrent use. Matching is single-threaded by design
// (spec.md); callers that need concurrent submission must serialize
// access themselves, the way the teacher's own lock-free variant hands
// callers a single-writer ring buffer instead of internal locking.

package matching

import (
	"errors"

	"go.uber.org/zap"

	"github.com/orbit-exchange/matchcore/internal/engine/book"
	"github.com/orbit-exchange/matchcore/internal/engine/pool"
)

// ErrInvalidQuantity is returned when a submitted order has zero quantity.
var ErrInvalidQuantity = errors.New("matching: quantity must be greater than zero")

// Stats is a point-in-time snapshot of engine activity counters.
type Stats struct {
	OrdersSubmitted uint64
	TradesExecuted  uint64
}

// Engine matches orders for a single symbol against a fixed-capacity
// order pool.
type Engine struct {
	pool *pool.Pool
	book *book.OrderBook
	log  *zap.Logger

	ordersSubmitted uint64
	tradesExecuted  uint64
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a structured logger. The default is a no-op logger,
// so passing none costs nothing.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New builds an Engine whose order pool holds at most capacity live
// orders at once.
func New(capacity int, opts ...Option) *Engine {
	p := pool.New(capacity)
	e := &Engine{
		pool: p,
		book: book.New(p),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SubmitLimit submits a limit order: it first matches against the
// opposite side of the book at prices at least as good as price, then
// rests whatever quantity remains at price.
func (e *Engine) SubmitLimit(id pool.OrderID, side pool.Side, price pool.Price, qty pool.Quantity) (book.MatchResult, error) {
	return e.submit(id, side, pool.Limit, price, qty)
}

// SubmitMarket submits a market order: it matches against the best
// available opposite-side prices until filled or the book runs dry, and
// never rests — any unfilled remainder is discarded.
func (e *Engine) SubmitMarket(id pool.OrderID, side pool.Side, qty pool.Quantity) (book.MatchResult, error) {
	return e.submit(id, side, pool.Market, 0, qty)
}

func (e *Engine) submit(id pool.OrderID, side pool.Side, typ pool.OrderType, price pool.Price, qty pool.Quantity) (book.MatchResult, error) {
	if qty == 0 {
		return book.MatchResult{}, ErrInvalidQuantity
	}

	o, err := e.pool.Acquire(id, side, typ, price, qty)
	if err != nil {
		return book.MatchResult{}, err
	}

	res := e.book.Match(o)
	e.ordersSubmitted++
	e.tradesExecuted += uint64(len(res.Trades))

	for _, h := range res.FilledResting {
		e.pool.Release(h)
	}

	if typ == pool.Market || o.IsFilled() {
		e.pool.Release(o.Handle())
		e.log.Debug("order consumed without resting",
			zap.Uint64("order_id", uint64(id)),
			zap.String("side", side.String()),
			zap.String("type", typ.String()),
			zap.Int("trades", len(res.Trades)),
		)
		return res, nil
	}

	if err := e.book.AddOrder(o); err != nil {
		e.pool.Release(o.Handle())
		return res, err
	}

	e.log.Debug("order resting",
		zap.Uint64("order_id", uint64(id)),
		zap.String("side", side.String()),
		zap.Int64("price", int64(price)),
		zap.Uint32("remaining", uint32(o.Remaining)),
	)
	return res, nil
}

// Cancel removes id from the book, if it is still resting, and releases
// its pool slot. The returned bool reports whether id was found and
// cancelled — an unknown or already-matched id is not an error, per
// spec.md §7, so it comes back as (false, nil) rather than a wrapped
// book.ErrOrderNotFound.
func (e *Engine) Cancel(id pool.OrderID) (bool, error) {
	h, err := e.book.CancelOrder(id)
	if err != nil {
		if errors.Is(err, book.ErrOrderNotFound) {
			return false, nil
		}
		return false, err
	}
	e.pool.Release(h)
	e.log.Debug("order cancelled", zap.Uint64("order_id", uint64(id)))
	return true, nil
}

// BestBid returns the best resting bid price, if any.
func (e *Engine) BestBid() (pool.Price, bool) { return e.book.BestBid() }

// BestAsk returns the best resting ask price, if any.
func (e *Engine) BestAsk() (pool.Price, bool) { return e.book.BestAsk() }

// Spread returns BestAsk-BestBid, if both sides are non-empty.
func (e *Engine) Spread() (pool.Price, bool) { return e.book.Spread() }

// OrderCount returns the number of orders currently resting in the book.
func (e *Engine) OrderCount() int { return e.book.OrderCount() }

// Stats returns a snapshot of cumulative activity counters.
func (e *Engine) Stats() Stats {
	return Stats{
		OrdersSubmitted: e.ordersSubmitted,
		TradesExecuted:  e.tradesExecuted,
	}
}
