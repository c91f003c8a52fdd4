package book

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forsete/internal/common"
)

func price(s string) common.Price {
	p, err := common.NewPriceFromString(s)
	if err != nil {
		panic(err)
	}
	return p
}

func qty(v uint64) common.Quantity {
	return common.NewQuantityFromUint(v)
}

func bidOrder(p string, size uint64, id OrderID) BookOrder {
	return NewBookOrder(common.Buy, price(p), qty(size), id)
}

func TestEmptyLevel(t *testing.T) {
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	_, ok := level.First()
	assert.False(t, ok)
	assert.Equal(t, 0, level.Len())
	assert.True(t, level.IsEmpty())
}

func TestLevelFromOrder(t *testing.T) {
	order := bidOrder("1.00", 10, 1)
	level := NewLevelFromOrder(order)

	assert.Equal(t, price("1.00"), level.Price.Value)
	assert.Equal(t, common.Buy, level.Price.Side)
	assert.Equal(t, 1, level.Len())
	first, ok := level.First()
	require.True(t, ok)
	assert.Equal(t, order, first)
	assert.Equal(t, 10.0, level.Size())
}

func TestAddOrderIncorrectPriceLevelIsFatal(t *testing.T) {
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	bad := bidOrder("2.00", 10, 1)
	assert.Panics(t, func() { level.Add(bad) })
}

func TestAddBulkIncorrectPriceIsFatal(t *testing.T) {
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	orders := []BookOrder{
		bidOrder("1.00", 10, 1),
		bidOrder("2.00", 20, 2),
	}
	assert.Panics(t, func() { level.AddBulk(orders) })
}

func TestComparisonsBidSide(t *testing.T) {
	level0 := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	level1 := NewLevel(NewBookPrice(price("1.01"), common.Buy))
	assert.True(t, level0.Equal(level0))
	assert.True(t, level1.Less(level0)) // better bid (1.01) is "less" than worse bid (1.00): it sorts first
	assert.False(t, level0.Less(level1))
}

func TestComparisonsAskSide(t *testing.T) {
	level0 := NewLevel(NewBookPrice(price("1.00"), common.Sell))
	level1 := NewLevel(NewBookPrice(price("1.01"), common.Sell))
	assert.True(t, level0.Equal(level0))
	assert.True(t, level0.Less(level1))
	assert.False(t, level1.Less(level0))
}

func TestBulkAdd(t *testing.T) {
	level := NewLevel(NewBookPrice(price("2.00"), common.Buy))
	level.AddBulk([]BookOrder{
		bidOrder("2.00", 10, 0),
		bidOrder("2.00", 20, 1),
	})

	assert.Equal(t, 2, level.Len())
	assert.Equal(t, 30.0, level.Size())
	assert.Equal(t, 60.0, level.Exposure())
	first, ok := level.First()
	require.True(t, ok)
	assert.Equal(t, OrderID(0), first.OrderID)
}

func TestUpdatePreservesFIFOPosition(t *testing.T) {
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	order1 := bidOrder("1.00", 10, 1)
	order2 := bidOrder("1.00", 20, 2)
	level.Add(order1)
	level.Add(order2)

	updated1 := bidOrder("1.00", 15, 1)
	level.Update(updated1)

	orders := level.GetOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, updated1, orders[0])
	assert.Equal(t, order2, orders[1])
}

func TestUpdateIncorrectPriceIsFatal(t *testing.T) {
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	level.Add(bidOrder("1.00", 10, 1))
	bad := bidOrder("2.00", 20, 1)
	assert.Panics(t, func() { level.Update(bad) })
}

func TestUpdateWithZeroSizeRemovesOrder(t *testing.T) {
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	level.Add(bidOrder("1.00", 10, 0))
	level.Add(bidOrder("1.00", 20, 1))
	level.Update(NewBookOrder(common.Buy, price("1.00"), common.ZeroQuantity(), 0))

	assert.Equal(t, 1, level.Len())
	assert.Equal(t, 20.0, level.Size())
	_, ok := level.First()
	require.True(t, ok)
}

func TestDeleteOrder(t *testing.T) {
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	order1 := bidOrder("1.00", 10, 0)
	order2 := bidOrder("1.00", 20, 1)
	level.Add(order1)
	level.Add(order2)
	level.Delete(order1)

	assert.Equal(t, 1, level.Len())
	assert.Equal(t, 20.0, level.Size())
	_, ok := level.orders[order2.OrderID]
	assert.True(t, ok)
	assert.Equal(t, 20.0, level.Exposure())
}

func TestRemoveByID(t *testing.T) {
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	level.Add(bidOrder("1.00", 10, 0))
	level.Add(bidOrder("1.00", 20, 1))

	level.RemoveByID(1, 0, 0)
	assert.Equal(t, 1, level.Len())
	assert.Equal(t, 10.0, level.Size())
}

func TestRemoveNonexistentOrderIsFatal(t *testing.T) {
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	assert.PanicsWithValue(t,
		newOrderNotFoundError(1, 2, 3),
		func() { level.RemoveByID(1, 2, 3) },
	)
}

func TestSizeRawAndDecimal(t *testing.T) {
	level := NewLevel(NewBookPrice(price("2.00"), common.Buy))
	level.Add(bidOrder("2.00", 10, 0))
	level.Add(bidOrder("2.00", 20, 1))

	assert.Equal(t, int64(30*common.FixedScalar), level.SizeRaw())
	assert.Equal(t, "30", level.SizeDecimal().String())
}

func TestExposureRaw(t *testing.T) {
	level := NewLevel(NewBookPrice(price("2.00"), common.Buy))
	level.Add(bidOrder("2.00", 10, 0))
	level.Add(bidOrder("2.00", 20, 1))

	assert.Equal(t, int64(60*common.FixedScalar), level.ExposureRaw())
}

// TestRandomizedInvariants drives a randomized sequence of add/update/delete
// operations at a fixed price and asserts the Book Level invariants hold
// after every operation: every id in insertion order is live, GetOrders
// returns exactly the live orders, and size matches the sum of live sizes.
func TestRandomizedInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	level := NewLevel(NewBookPrice(price("1.00"), common.Buy))
	live := map[OrderID]float64{}
	var fifo []OrderID // expected FIFO order of currently-live ids

	removeFromFIFO := func(id OrderID) {
		for i, existing := range fifo {
			if existing == id {
				fifo = append(fifo[:i], fifo[i+1:]...)
				break
			}
		}
	}

	for i := 0; i < 500; i++ {
		id := OrderID(rng.Intn(25))
		switch rng.Intn(3) {
		case 0: // add or update
			size := float64(rng.Intn(100) + 1)
			order := NewBookOrder(common.Buy, price("1.00"), common.NewQuantityFromFloat(size), id)
			if _, exists := live[id]; exists {
				level.Update(order)
			} else {
				level.Add(order)
				fifo = append(fifo, id)
			}
			live[id] = size
		case 1: // zero-update == delete
			if _, exists := live[id]; exists {
				level.Update(NewBookOrder(common.Buy, price("1.00"), common.ZeroQuantity(), id))
				delete(live, id)
				removeFromFIFO(id)
			}
		case 2: // explicit delete
			if _, exists := live[id]; exists {
				level.Delete(NewBookOrder(common.Buy, price("1.00"), common.ZeroQuantity(), id))
				delete(live, id)
				removeFromFIFO(id)
			}
		}

		assertLevelInvariants(t, level, live, fifo)
	}
}

func assertLevelInvariants(t *testing.T, level *Level, live map[OrderID]float64, fifo []OrderID) {
	t.Helper()

	assert.Equal(t, len(live), level.Len())

	var expectedTotal float64
	for _, size := range live {
		expectedTotal += size
	}
	assert.InDelta(t, expectedTotal, level.Size(), 1e-6)

	var actualOrder []OrderID
	for _, o := range level.GetOrders() {
		actualOrder = append(actualOrder, o.OrderID)
	}
	assert.Equal(t, fifo, actualOrder)
}
