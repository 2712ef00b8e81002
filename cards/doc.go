// Package cards models a standard 52-card deck: cards, a deck that can be
// drawn from and shuffled in a few different styles, and a table holding a
// deck together with its discard pile.
//
// Card images produced by the sheet package are named after Card.Filename, so
// a card drawn here can be shown in a browser without further lookup.
package cards
