// Package engine holds the Chinchón rule engine: meld detection, missing-card
// analysis, bot draw and finish heuristics, and scoring. Every function is a pure
// function of its arguments.
package engine

import (
	"fmt"

	"github.com/jason-s-yu/chinchon/internal/models"
)

// ComboKind tells what a ComboSlot currently holds.
type ComboKind int

const (
	KindEmpty ComboKind = iota
	KindStair
	KindGroup
)

func (k ComboKind) String() string {
	switch k {
	case KindStair:
		return "stair"
	case KindGroup:
		return "group"
	default:
		return "empty"
	}
}

func (k ComboKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ComboKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "stair":
		*k = KindStair
	case "group":
		*k = KindGroup
	case "empty", "":
		*k = KindEmpty
	default:
		return fmt.Errorf("unknown combo kind %q", text)
	}
	return nil
}

const (
	// MinMeld is the smallest combo that counts as a real meld.
	MinMeld = 3
	// MaxComboCards is the longest representable combo (a big stair).
	MaxComboCards = 7
)

// stairTargets are the run lengths tried, in priority order.
var stairTargets = [...]int{7, 6, 4, 3}

// ComboSlot is one of the two meld containers derived for a player on every analysis pass.
type ComboSlot struct {
	Kind  ComboKind     `json:"kind"`
	Cards []models.Card `json:"cards"`
}

// Length is the number of genuine cards in the slot.
func (s ComboSlot) Length() int {
	return len(s.Cards)
}

func (s ComboSlot) IsEmpty() bool {
	return s.Kind == KindEmpty
}

// Contains reports whether c is one of the slot's cards.
func (s ComboSlot) Contains(c models.Card) bool {
	for _, held := range s.Cards {
		if held == c {
			return true
		}
	}
	return false
}

// Slots is the pair of combo slots a player owns.
type Slots [2]ComboSlot

// Lengths returns both slot lengths.
func (s Slots) Lengths() (int, int) {
	return s[0].Length(), s[1].Length()
}

// Melded reports whether c is used by either slot.
func (s Slots) Melded(c models.Card) bool {
	return s[0].Contains(c) || s[1].Contains(c)
}

// Group records which suits of one rank a hand holds.
type Group struct {
	Rank   models.Rank
	Suits  [models.NumSuits]bool
	Length int
}

// FindGroupsByRank collects the cards of rank held in hand.
func FindGroupsByRank(hand []models.Card, rank models.Rank) Group {
	g := Group{Rank: rank}
	for _, c := range hand {
		if c.Rank != rank || !c.Suit.Valid() || g.Suits[c.Suit] {
			continue
		}
		g.Suits[c.Suit] = true
		g.Length++
	}
	return g
}

// Cards lists the group's cards in suit order.
func (g Group) Cards() []models.Card {
	cards := make([]models.Card, 0, g.Length)
	for s := models.Suit(0); s < models.NumSuits; s++ {
		if g.Suits[s] {
			cards = append(cards, models.Card{Suit: s, Rank: g.Rank})
		}
	}
	return cards
}

// Stair is the presence array of one suit's ranks in a hand, indexed by rank-1.
type Stair struct {
	Suit   models.Suit
	Held   [models.NumRanks]bool
	Length int
}

// FindStairsBySuit marks which ranks of suit the hand holds.
func FindStairsBySuit(hand []models.Card, suit models.Suit) Stair {
	s := Stair{Suit: suit}
	for _, c := range hand {
		if c.Suit != suit || !c.Rank.Valid() || s.Held[c.Rank-1] {
			continue
		}
		s.Held[c.Rank-1] = true
		s.Length++
	}
	return s
}

// Has reports whether rank r is held. Out-of-range ranks are never held.
func (s Stair) Has(r models.Rank) bool {
	return r.Valid() && s.Held[r-1]
}

// Run is a maximal stretch of consecutive held ranks.
type Run struct {
	Start  models.Rank
	Length int
}

// End is the last rank of the run.
func (r Run) End() models.Rank {
	return r.Start + models.Rank(r.Length) - 1
}

// LongestContiguousRun finds the longest run of consecutive held ranks. Ties go to the
// lowest run. ok is false when the stair holds no rank at all.
func LongestContiguousRun(s Stair) (Run, bool) {
	return longestRunFrom(s, models.MinRank)
}

func longestRunFrom(s Stair, from models.Rank) (Run, bool) {
	var best, cur Run
	for r := from; r <= models.MaxRank; r++ {
		if !s.Has(r) {
			cur = Run{}
			continue
		}
		if cur.Length == 0 {
			cur.Start = r
		}
		cur.Length++
		if cur.Length > best.Length {
			best = cur
		}
	}
	return best, best.Length > 0
}

// RunWindow is a candidate stair of Target consecutive ranks starting at Start.
// Held marks, per offset, whether that rank is a genuine card or a tolerated gap.
type RunWindow struct {
	Suit   models.Suit
	Start  models.Rank
	Target int
	Held   []bool
}

// Cards returns the genuine cards of the window in rank order.
func (w RunWindow) Cards() []models.Card {
	cards := make([]models.Card, 0, w.Target)
	for i, held := range w.Held {
		if held {
			cards = append(cards, models.Card{Suit: w.Suit, Rank: w.Start + models.Rank(i)})
		}
	}
	return cards
}

// Length counts the genuine cards of the window.
func (w RunWindow) Length() int {
	n := 0
	for _, held := range w.Held {
		if held {
			n++
		}
	}
	return n
}

// End is the last rank covered by the window.
func (w RunWindow) End() models.Rank {
	return w.Start + models.Rank(w.Target) - 1
}

// TryExtendRun tries to justify a run of target ranks anchored at runStart, tolerating
// at most one missing rank: the window is accepted when more than target-2 of its ranks
// are held. A window running past rank 12 is slid back to end at 12.
func TryExtendRun(s Stair, target int, runStart models.Rank) (RunWindow, bool) {
	if target < MinMeld || target > MaxComboCards || !runStart.Valid() {
		return RunWindow{}, false
	}
	start := runStart
	if end := start + models.Rank(target) - 1; end > models.MaxRank {
		start = models.MaxRank - models.Rank(target) + 1
	}

	w := RunWindow{Suit: s.Suit, Start: start, Target: target, Held: make([]bool, target)}
	present := 0
	for i := 0; i < target; i++ {
		if s.Has(start + models.Rank(i)) {
			w.Held[i] = true
			present++
		}
	}
	if present <= target-2 {
		return RunWindow{}, false
	}
	return w, true
}

// firstRunFrom finds the lowest maximal run at or after from that is at least minLen long.
func firstRunFrom(s Stair, from models.Rank, minLen int) (Run, bool) {
	var cur Run
	for r := from; r <= models.MaxRank+1; r++ {
		if s.Has(r) {
			if cur.Length == 0 {
				cur.Start = r
			}
			cur.Length++
			continue
		}
		if cur.Length >= minLen {
			return cur, true
		}
		cur = Run{}
	}
	return Run{}, false
}

// bestStairs walks a suit's runs of three or more low to high and returns every accepted
// window whose genuine length reaches MinMeld. Windows never overlap.
func bestStairs(s Stair) []RunWindow {
	var out []RunWindow
	from := models.MinRank
	for from <= models.MaxRank {
		run, ok := firstRunFrom(s, from, MinMeld)
		if !ok {
			break
		}
		accepted := false
		for _, target := range stairTargets {
			w, ok := TryExtendRun(s, target, run.Start)
			if !ok || w.Start < from || w.Length() < MinMeld {
				continue
			}
			out = append(out, w)
			from = w.End() + 1
			accepted = true
			break
		}
		if !accepted {
			from = run.End() + 1
		}
	}
	return out
}

// AnalyzeHand derives both combo slots from hand. Stairs are placed first, suit by suit:
// the first one found takes slot 0 and later ones slot 1. Groups of three or more follow,
// rank by rank: slot 0 when it is empty or already holds a group of that rank, slot 1
// otherwise. Overlap between the slots is left for ResolveOverlap.
func AnalyzeHand(hand []models.Card) Slots {
	var slots Slots

	for suit := models.Suit(0); suit < models.NumSuits; suit++ {
		for _, w := range bestStairs(FindStairsBySuit(hand, suit)) {
			n := 1
			if slots[0].IsEmpty() {
				n = 0
			}
			slots[n] = ComboSlot{Kind: KindStair, Cards: w.Cards()}
		}
	}

	for rank := models.MinRank; rank <= models.MaxRank; rank++ {
		g := FindGroupsByRank(hand, rank)
		if g.Length < MinMeld {
			continue
		}
		n := 1
		if slots[0].IsEmpty() || (slots[0].Kind == KindGroup && slots[0].Cards[0].Rank == rank) {
			n = 0
		}
		slots[n] = ComboSlot{Kind: KindGroup, Cards: g.Cards()}
	}

	return slots
}

// ResolveOverlap removes from a group any physical card also used by a stair in the
// other slot, so no card scores twice. The stair always keeps the card.
func ResolveOverlap(slots Slots) Slots {
	out := Slots{cloneSlot(slots[0]), cloneSlot(slots[1])}
	for stair, group := 0, 1; stair < 2; stair, group = stair+1, group-1 {
		if out[stair].Kind != KindStair || out[group].Kind != KindGroup {
			continue
		}
		kept := out[group].Cards[:0]
		for _, c := range out[group].Cards {
			if !out[stair].Contains(c) {
				kept = append(kept, c)
			}
		}
		out[group].Cards = kept
	}
	return out
}

// Analyze runs AnalyzeHand followed by ResolveOverlap.
func Analyze(hand []models.Card) Slots {
	return ResolveOverlap(AnalyzeHand(hand))
}

func cloneSlot(s ComboSlot) ComboSlot {
	if s.Cards == nil {
		return s
	}
	cards := make([]models.Card, len(s.Cards))
	copy(cards, s.Cards)
	return ComboSlot{Kind: s.Kind, Cards: cards}
}
