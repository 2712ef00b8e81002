package cards

import (
	"math/rand"
	"sync"
)

// Table is a deck together with the pile of cards drawn from it. It is safe
// for concurrent use.
type Table struct {
	mu      sync.Mutex
	deck    *Deck
	discard []Card
}

// TableState is a snapshot of a Table.
type TableState struct {
	Remaining int
	// Discard is the top of the discard pile; nil when nothing was drawn.
	Discard *Card
	Drawn   int
}

func NewTable(rnd *rand.Rand) *Table {
	return &Table{deck: NewDeck(rnd)}
}

// Draw moves the top card of the deck onto the discard pile.
func (t *Table) Draw() (Card, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, err := t.deck.Draw()
	if err != nil {
		return Card{}, err
	}
	t.discard = append(t.discard, c)
	return c, nil
}

// Reset returns every card to the deck and shuffles it.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deck.Reset()
	t.deck.ShuffleRandom()
	t.discard = nil
}

// Shuffle shuffles the cards still in the deck. The discard pile is left
// alone.
func (t *Table) Shuffle(style ShuffleStyle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deck.Shuffle(style)
}

// Find reports where c is in the deck, 1 being the top card. ok is false if
// c is not in the deck, e.g. because it was drawn.
func (t *Table) Find(c Card) (pos int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deck.Find(c)
}

func (t *Table) State() TableState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := TableState{
		Remaining: t.deck.Len(),
		Drawn:     len(t.discard),
	}
	if len(t.discard) > 0 {
		top := t.discard[len(t.discard)-1]
		s.Discard = &top
	}
	return s
}
