package cards

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Suit of a card. The zero value is not a valid suit.
type Suit int

const (
	SuitUnknown Suit = iota
	Clubs
	Diamonds
	Hearts
	Spades
)

// Suits lists the four suits in factory deck order.
var Suits = []Suit{Clubs, Diamonds, Hearts, Spades}

var suitNames = map[Suit]string{
	Clubs:    "clubs",
	Diamonds: "diamonds",
	Hearts:   "hearts",
	Spades:   "spades",
}

func (s Suit) String() string {
	if n, ok := suitNames[s]; ok {
		return n
	}
	return fmt.Sprintf("suit(%d)", int(s))
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	_, ok := suitNames[s]
	return ok
}

// ParseSuit accepts the plural name ("hearts") as well as the singular one
// ("heart"), case-insensitively.
func ParseSuit(s string) (Suit, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for suit, name := range suitNames {
		if n == name || n+"s" == name {
			return suit, nil
		}
	}
	return SuitUnknown, errors.Errorf("cards: unknown suit %q", s)
}

func (s Suit) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Errorf("cards: cannot marshal %v", s)
	}
	return []byte(s.String()), nil
}

func (s *Suit) UnmarshalText(b []byte) error {
	v, err := ParseSuit(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Rank of a card, 1 (ace) to 13 (king). The zero value is not a valid rank.
type Rank int

const (
	RankUnknown Rank = 0
	Ace         Rank = 1
	Jack        Rank = 11
	Queen       Rank = 12
	King        Rank = 13
)

var rankNames = map[Rank]string{
	Ace:   "ace",
	Jack:  "jack",
	Queen: "queen",
	King:  "king",
}

func (r Rank) String() string {
	if n, ok := rankNames[r]; ok {
		return n
	}
	if r.Valid() {
		return strconv.Itoa(int(r))
	}
	return fmt.Sprintf("rank(%d)", int(r))
}

func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

// ParseRank accepts "ace", "jack", "queen", "king" and the numbers 1 to 13.
func ParseRank(s string) (Rank, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for rank, name := range rankNames {
		if n == name {
			return rank, nil
		}
	}
	if i, err := strconv.Atoi(n); err == nil && Rank(i).Valid() {
		return Rank(i), nil
	}
	return RankUnknown, errors.Errorf("cards: unknown rank %q", s)
}

func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, errors.Errorf("cards: cannot marshal %v", r)
	}
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(b []byte) error {
	v, err := ParseRank(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Card is a single card of a standard deck. Cards are comparable with ==.
type Card struct {
	Suit Suit `json:"suit" xml:"suit"`
	Rank Rank `json:"rank" xml:"rank"`
}

// IsZero reports whether c is the zero Card, which labels nothing.
func (c Card) IsZero() bool {
	return c == Card{}
}

func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

// String returns e.g. "ace of hearts".
func (c Card) String() string {
	return fmt.Sprintf("%v of %v", c.Rank, c.Suit)
}

// Filename returns the image file name for the card, e.g. "hearts_ace.png".
func (c Card) Filename() string {
	return fmt.Sprintf("%v_%v.png", c.Suit, c.Rank)
}

// ParseCard parses the forms produced by String ("ace of hearts") and by
// Filename without its extension ("hearts_ace").
func ParseCard(s string) (Card, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".png")
	if parts := strings.SplitN(s, " of ", 2); len(parts) == 2 {
		return parseCardParts(parts[1], parts[0], s)
	}
	if parts := strings.SplitN(s, "_", 2); len(parts) == 2 {
		return parseCardParts(parts[0], parts[1], s)
	}
	return Card{}, errors.Errorf("cards: cannot parse card %q", s)
}

func parseCardParts(suit, rank, orig string) (Card, error) {
	st, err := ParseSuit(suit)
	if err != nil {
		return Card{}, errors.Wrapf(err, "parsing card %q", orig)
	}
	rk, err := ParseRank(rank)
	if err != nil {
		return Card{}, errors.Wrapf(err, "parsing card %q", orig)
	}
	return Card{Suit: st, Rank: rk}, nil
}
