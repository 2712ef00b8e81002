package cards

import (
	"math/rand"
	"sync"
	"testing"

	"badc0de.net/pkg/go-cards/ttesting"
)

func TestTable(t *testing.T) {
	tbl := NewTable(rand.New(rand.NewSource(7)))

	s := tbl.State()
	ttesting.AssertEqualInt(t, "fresh table remaining", s.Remaining, 52)
	if s.Discard != nil {
		t.Errorf("fresh table has discard %v", *s.Discard)
	}

	c, err := tbl.Draw()
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	s = tbl.State()
	ttesting.AssertEqualInt(t, "remaining after draw", s.Remaining, 51)
	ttesting.AssertEqualInt(t, "drawn after draw", s.Drawn, 1)
	if s.Discard == nil || *s.Discard != c {
		t.Errorf("discard: got %v; want %v", s.Discard, c)
	}

	tbl.Reset()
	s = tbl.State()
	ttesting.AssertEqualInt(t, "remaining after reset", s.Remaining, 52)
	if s.Discard != nil {
		t.Errorf("reset left discard %v", *s.Discard)
	}
	if pos, ok := tbl.Find(c); !ok {
		t.Errorf("%v not back in the deck after reset", c)
	} else if pos < 1 || pos > 52 {
		t.Errorf("%v at position %d", c, pos)
	}
}

func TestTableResetShuffles(t *testing.T) {
	tbl := NewTable(rand.New(rand.NewSource(3)))
	tbl.Reset()

	var drawn []Card
	for {
		c, err := tbl.Draw()
		if err != nil {
			break
		}
		drawn = append(drawn, c)
	}
	factory := FactoryOrder()
	inOrder := true
	for i, c := range drawn {
		if c != factory[len(factory)-1-i] {
			inOrder = false
			break
		}
	}
	if inOrder {
		t.Error("reset left the deck in factory order")
	}
	if !sameCards(drawn, factory) {
		t.Error("reset changed the set of cards")
	}
}

func TestTableConcurrentDraws(t *testing.T) {
	tbl := NewTable(nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[Card]bool{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				c, err := tbl.Draw()
				if err != nil {
					return
				}
				mu.Lock()
				if seen[c] {
					t.Errorf("card %v drawn twice", c)
				}
				seen[c] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	ttesting.AssertEqualInt(t, "all cards drawn once", len(seen), 52)
	ttesting.AssertEqualInt(t, "deck empty", tbl.State().Remaining, 0)
}
