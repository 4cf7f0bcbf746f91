package models

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var deckLineRe = regexp.MustCompile(`suit\s*=\s*(\d+)\s*,\s*number\s*=\s*(\d+)`)

// ParseDeck reads a scripted deck, one card per line in the form
//
//	suit = 2, number = 11,
//
// Blank lines and lines starting with '#' are skipped. The result must be a
// permutation of the universe; the first line is the first card dealt.
func ParseDeck(r io.Reader) ([]Card, error) {
	var cards []Card
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := deckLineRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: expected \"suit = S, number = N\", got %q", lineNo, line)
		}
		suit, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: suit: %w", lineNo, err)
		}
		rank, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: number: %w", lineNo, err)
		}
		c, err := NewCard(Suit(suit), Rank(rank))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		cards = append(cards, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading deck: %w", err)
	}
	if err := IsPermutationOfUniverse(cards); err != nil {
		return nil, fmt.Errorf("scripted deck: %w", err)
	}
	return cards, nil
}
