package cards

import (
	"math/rand"

	"github.com/pkg/errors"
)

var (
	ErrEmptyDeck    = errors.New("cards: deck is empty")
	ErrUnknownStyle = errors.New("cards: unknown shuffle style")
)

// ShuffleStyle selects how a Deck is shuffled.
type ShuffleStyle string

const (
	ShuffleRandom ShuffleStyle = "random"
	ShuffleCut    ShuffleStyle = "cut"
	ShuffleRiffle ShuffleStyle = "riffle"
)

// FactoryOrder returns the 52 unique cards in the order a fresh deck holds
// them, bottom first: clubs, diamonds, hearts, spades, each from king down to
// ace.
func FactoryOrder() []Card {
	all := make([]Card, 0, len(Suits)*int(King))
	for _, s := range Suits {
		for r := King; r >= Ace; r-- {
			all = append(all, Card{Suit: s, Rank: r})
		}
	}
	return all
}

// Deck is an ordered pile of cards. Index 0 is the bottom of the deck; Draw
// takes from the top.
//
// A Deck is not safe for concurrent use; see Table.
type Deck struct {
	cards []Card
	rnd   *rand.Rand
}

// NewDeck returns a deck in factory order. rnd drives all shuffles; nil
// selects a source seeded from the global generator.
func NewDeck(rnd *rand.Rand) *Deck {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	d := &Deck{rnd: rnd}
	d.Reset()
	return d
}

// NewDeckOf returns a deck holding exactly the passed cards, bottom first.
func NewDeckOf(rnd *rand.Rand, cs ...Card) *Deck {
	d := NewDeck(rnd)
	d.cards = append(d.cards[:0], cs...)
	return d
}

// Reset discards whatever the deck holds and refills it in factory order.
func (d *Deck) Reset() {
	d.cards = FactoryOrder()
}

func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the deck's cards, bottom first.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, nil
}

// Shuffle shuffles using the passed style.
func (d *Deck) Shuffle(style ShuffleStyle) error {
	switch style {
	case ShuffleRandom, "":
		d.ShuffleRandom()
		return nil
	case ShuffleCut:
		d.ShuffleCut()
		return nil
	case ShuffleRiffle:
		d.ShuffleRiffle()
		return nil
	}
	return errors.Wrapf(ErrUnknownStyle, "%q", string(style))
}

// ShuffleRandom applies a uniform random permutation.
func (d *Deck) ShuffleRandom() {
	d.rnd.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// ShuffleCut divides the deck into three non-empty piles of random size and
// stacks them back in a random order. Decks of fewer than three cards get a
// random shuffle instead.
func (d *Deck) ShuffleCut() {
	n := len(d.cards)
	if n < 3 {
		d.ShuffleRandom()
		return
	}
	split1, split2 := d.cutPoints()
	d.cutAt(split1, split2)
}

// cutPoints picks the indices a 3-way cut splits at, with
// 1 <= split1 < split2 <= len-1. The deck must hold at least three cards.
func (d *Deck) cutPoints() (split1, split2 int) {
	n := len(d.cards)
	split1 = d.between(1, n-2)
	split2 = d.between(split1+1, n-1)
	return split1, split2
}

// cutAt splits the deck before split1 and split2 and restacks the three
// piles in a random order. Each pile keeps its own order.
func (d *Deck) cutAt(split1, split2 int) {
	chunks := [][]Card{
		append([]Card(nil), d.cards[:split1]...),
		append([]Card(nil), d.cards[split1:split2]...),
		append([]Card(nil), d.cards[split2:]...),
	}
	d.rnd.Shuffle(len(chunks), func(i, j int) {
		chunks[i], chunks[j] = chunks[j], chunks[i]
	})
	d.cards = d.cards[:0]
	for _, c := range chunks {
		d.cards = append(d.cards, c...)
	}
}

// Find returns the position of c counted from the top of the deck, the top
// card being 1. ok is false if c is not in the deck.
func (d *Deck) Find(c Card) (pos int, ok bool) {
	for i := len(d.cards) - 1; i >= 0; i-- {
		if d.cards[i] == c {
			return len(d.cards) - i, true
		}
	}
	return 0, false
}

// ShuffleRiffle splits the deck near the middle and interleaves the halves
// in runs of one to three cards, the way the cards fall from the thumbs in a
// hand riffle. Neither half is allowed to run ahead of the other by five or
// more cards.
func (d *Deck) ShuffleRiffle() {
	n := len(d.cards)
	if n <= 1 {
		return
	}

	mid := n / 2
	leeway := n / 10
	lo := mid - leeway
	if lo < 1 {
		lo = 1
	}
	hi := mid + leeway
	if hi > n-1 {
		hi = n - 1
	}

	split := d.between(lo, hi)
	left := append([]Card(nil), d.cards[:split]...)
	right := append([]Card(nil), d.cards[split:]...)

	d.cards = d.cards[:0]
	for len(left) > 0 || len(right) > 0 {
		diff := len(right) - len(left)
		if diff > -5 {
			for k := d.between(1, 3); k > 0 && len(right) > 0; k-- {
				d.cards = append(d.cards, right[0])
				right = right[1:]
			}
		}
		if diff < 5 {
			for k := d.between(1, 3); k > 0 && len(left) > 0; k-- {
				d.cards = append(d.cards, left[0])
				left = left[1:]
			}
		}
	}
}

// between returns a random int in [lo, hi].
func (d *Deck) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + d.rnd.Intn(hi-lo+1)
}
