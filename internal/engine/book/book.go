// =============================
// Matchcore Order Book
// =============================
// OrderBook holds the two price ladders (bids, asks) for a single symbol
// and implements price-time priority matching between them. Ladders are
// tidwall/btree Maps keyed by the raw int64 tick value — the teacher keys
// its own ladder by a primitive-compatible serialization of price for the
// same reason: btree's generic ordered constraint should only ever see
// plain comparable primitives, never a named wrapper type.
//
// AddOrder and Match take a *pool.Order already acquired from the pool;
// CancelOrder returns a pool.Handle. The price levels and the live-order
// index store only pool.Handle values. The book never allocates or frees a
// pool slot itself. That is matching.Engine's job.

package book

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/orbit-exchange/matchcore/internal/engine/pool"
)

// ErrDuplicateLiveID is returned by AddOrder when the order's ID is still
// tracked as live — either resting in the book or not yet cancelled.
var ErrDuplicateLiveID = errors.New("book: order id already live")

// ErrOrderNotFound is returned by CancelOrder for an ID that is not
// currently resting anywhere in the book.
var ErrOrderNotFound = errors.New("book: order not found")

// Trade records one execution. Price is always the resting counterparty's
// limit price — the passive side prints, never the aggressor's — carried
// over unchanged from the original C++ implementation's rule.
type Trade struct {
	ID          uuid.UUID
	BuyOrderID  pool.OrderID
	SellOrderID pool.OrderID
	Price       pool.Price
	Quantity    pool.Quantity
	Timestamp   time.Time
}

// MatchResult is everything Match produced for one incoming
// order: the trades it generated, plus the handles of every resting order
// that was fully filled (and therefore removed from the book) in the
// process. The caller (matching.Engine) is responsible for releasing
// those handles back to the pool.
type MatchResult struct {
	Trades        []Trade
	FilledResting []pool.Handle
}

// OrderBook is the matching engine's state for one symbol.
type OrderBook struct {
	pool *pool.Pool

	bids *btree.Map[int64, *PriceLevel] // highest price first
	asks *btree.Map[int64, *PriceLevel] // lowest price first

	live map[pool.OrderID]location
}

type location struct {
	handle pool.Handle
	side   pool.Side
	price  pool.Price
}

// New constructs an empty order book backed by p. The book never acquires
// or releases slots in p — callers do that and pass in handles.
func New(p *pool.Pool) *OrderBook {
	return &OrderBook{
		pool: p,
		bids: btree.NewMap[int64, *PriceLevel](32),
		asks: btree.NewMap[int64, *PriceLevel](32),
		live: make(map[pool.OrderID]location),
	}
}

func ladderFor(b *OrderBook, side pool.Side) *btree.Map[int64, *PriceLevel] {
	if side == pool.Buy {
		return b.bids
	}
	return b.asks
}

// crosses reports whether a resting order at restingPrice would trade
// against an incoming order of the opposite side at incomingPrice, given
// the incoming order's side.
func crosses(incomingSide pool.Side, incomingPrice, restingPrice pool.Price, isMarket bool) bool {
	if isMarket {
		return true
	}
	if incomingSide == pool.Buy {
		return incomingPrice >= restingPrice
	}
	return incomingPrice <= restingPrice
}

// Match runs o — which must already be acquired in the pool but not yet
// resting anywhere — against the opposite side of the book, consuming
// liquidity in price-then-time priority until either o is fully filled or
// no more resting orders cross its price. It does not add any remainder
// of o to the book; the caller decides whether to rest it (AddOrder) or
// discard it (a fully-filled or unfillable market order).
func (b *OrderBook) Match(o *pool.Order) MatchResult {
	res := MatchResult{}
	opp := ladderFor(b, oppositeSide(o.Side))

	for o.Remaining > 0 {
		price, lvl, ok := firstLevel(opp, o.Side)
		if !ok {
			break
		}
		if !crosses(o.Side, o.Price, pool.Price(price), o.Type == pool.Market) {
			break
		}

		for o.Remaining > 0 && lvl.Len() > 0 {
			restingHandle := lvl.Front()
			resting := b.pool.Get(restingHandle)

			fillQty := o.Fill(resting.Remaining)
			resting.Fill(fillQty)
			lvl.TotalQuantity -= fillQty

			buyID, sellID := o.ID, resting.ID
			if o.Side == pool.Sell {
				buyID, sellID = resting.ID, o.ID
			}
			res.Trades = append(res.Trades, Trade{
				ID:          uuid.New(),
				BuyOrderID:  buyID,
				SellOrderID: sellID,
				Price:       resting.Price,
				Quantity:    fillQty,
				Timestamp:   time.Now(),
			})

			if resting.IsFilled() {
				lvl.PopFront(b.pool)
				delete(b.live, resting.ID)
				res.FilledResting = append(res.FilledResting, restingHandle)
			}
		}

		if lvl.Len() == 0 {
			opp.Delete(price)
		}
	}

	return res
}

// AddOrder rests o on its side of the book. The caller must have already
// run Match (if appropriate) and confirmed o still has quantity
// remaining; AddOrder does not match. Returns ErrDuplicateLiveID if the
// order's ID collides with one already resting.
func (b *OrderBook) AddOrder(o *pool.Order) error {
	if _, exists := b.live[o.ID]; exists {
		return ErrDuplicateLiveID
	}

	ladder := ladderFor(b, o.Side)
	key := int64(o.Price)
	lvl, ok := ladder.Get(key)
	if !ok {
		lvl = newPriceLevel(o.Price)
		ladder.Set(key, lvl)
	}
	lvl.Append(b.pool, o.Handle())

	b.live[o.ID] = location{handle: o.Handle(), side: o.Side, price: o.Price}
	return nil
}

// CancelOrder unlinks id's order from whichever price level it rests on.
// It does not release the order's pool slot — that remains the caller's
// responsibility, exactly once per handle, after CancelOrder returns its
// handle. Returns ErrOrderNotFound if id is not currently resting.
func (b *OrderBook) CancelOrder(id pool.OrderID) (pool.Handle, error) {
	loc, ok := b.live[id]
	if !ok {
		return pool.NullHandle, ErrOrderNotFound
	}
	ladder := ladderFor(b, loc.side)
	key := int64(loc.price)
	lvl, ok := ladder.Get(key)
	if !ok {
		return pool.NullHandle, ErrOrderNotFound
	}

	lvl.Remove(b.pool, loc.handle)
	if lvl.Len() == 0 {
		ladder.Delete(key)
	}
	delete(b.live, id)
	return loc.handle, nil
}

// BestBid returns the highest resting bid price and true, or false if the
// bid side is empty.
func (b *OrderBook) BestBid() (pool.Price, bool) {
	var price pool.Price
	found := false
	b.bids.Reverse(func(k int64, _ *PriceLevel) bool {
		price = pool.Price(k)
		found = true
		return false
	})
	return price, found
}

// BestAsk returns the lowest resting ask price and true, or false if the
// ask side is empty.
func (b *OrderBook) BestAsk() (pool.Price, bool) {
	var price pool.Price
	found := false
	b.asks.Scan(func(k int64, _ *PriceLevel) bool {
		price = pool.Price(k)
		found = true
		return false
	})
	return price, found
}

// Spread returns BestAsk-BestBid and true, or false if either side is
// empty.
func (b *OrderBook) Spread() (pool.Price, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

// OrderCount returns the number of orders currently resting in the book,
// across both sides.
func (b *OrderBook) OrderCount() int { return len(b.live) }

// BidLevelCount returns the number of distinct price levels on the bid
// side.
func (b *OrderBook) BidLevelCount() int { return b.bids.Len() }

// AskLevelCount returns the number of distinct price levels on the ask
// side.
func (b *OrderBook) AskLevelCount() int { return b.asks.Len() }

func oppositeSide(s pool.Side) pool.Side {
	if s == pool.Buy {
		return pool.Sell
	}
	return pool.Buy
}

// firstLevel returns the best resting level on ladder from the
// perspective of an incoming order on incomingSide: the highest bid when
// the incoming order is a sell, the lowest ask when it's a buy.
func firstLevel(ladder *btree.Map[int64, *PriceLevel], incomingSide pool.Side) (int64, *PriceLevel, bool) {
	var key int64
	var lvl *PriceLevel
	found := false

	if incomingSide == pool.Buy {
		ladder.Scan(func(k int64, v *PriceLevel) bool {
			key, lvl, found = k, v, true
			return false
		})
	} else {
		ladder.Reverse(func(k int64, v *PriceLevel) bool {
			key, lvl, found = k, v, true
			return false
		})
	}
	return key, lvl, found
}
