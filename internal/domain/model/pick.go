// Package model contains domain models passed between layers.
package model

import "fmt"

// Position enumerates the fantasy roster positions present in the dataset.
type Position string

// Known positions.
const (
	QB  Position = "QB"
	RB  Position = "RB"
	WR  Position = "WR"
	TE  Position = "TE"
	K   Position = "K"
	DST Position = "DST"
)

// Positions lists every position in canonical display order. Result rows
// grouped by position are emitted in this order.
var Positions = []Position{QB, RB, WR, TE, K, DST}

// ParsePosition converts a raw string into a Position.
func ParsePosition(s string) (Position, error) {
	p := Position(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown position %q", s)
	}
	return p, nil
}

// Valid reports whether p is one of the known positions.
func (p Position) Valid() bool {
	switch p {
	case QB, RB, WR, TE, K, DST:
		return true
	}
	return false
}

// Pick is one row of the draft dataset: a single player selected by a single
// roster slot within a single draft.
type Pick struct {
	DraftID       int      // groups picks into one draft event
	TeamID        int      // globally unique team identifier
	DraftPosition int      // roster slot within the draft, 1..N
	Round         int      // pick-cycle number, >= 1
	OverallPick   int      // global pick order within the draft
	Player        string   // player name
	Position      Position // QB/RB/WR/TE/K/DST
	Team          string   // real-world team abbreviation
}
