package models

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniverseIsCanonical(t *testing.T) {
	u := Universe()
	require.Len(t, u, DeckSize)
	require.NoError(t, IsPermutationOfUniverse(u))

	assert.Equal(t, Card{Suit: Oros, Rank: 1}, u[0])
	assert.Equal(t, Card{Suit: Bastos, Rank: 12}, u[DeckSize-1])
	for i, c := range u {
		assert.Equal(t, i, c.Index())
		assert.Equal(t, c, CardFromIndex(i))
	}
}

func TestCardKeyIsUnique(t *testing.T) {
	seen := map[int]Card{}
	for _, c := range Universe() {
		prev, dup := seen[c.Key()]
		require.False(t, dup, "key %d shared by %v and %v", c.Key(), prev, c)
		seen[c.Key()] = c
	}
}

func TestNewCardRejectsOutOfRange(t *testing.T) {
	_, err := NewCard(4, 1)
	assert.Error(t, err)
	_, err = NewCard(0, 0)
	assert.Error(t, err)
	_, err = NewCard(0, 13)
	assert.Error(t, err)

	c, err := NewCard(Espadas, 7)
	require.NoError(t, err)
	assert.Equal(t, "7 of espadas", c.String())
}

func TestShuffledUniverseIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cards := ShuffledUniverse(rng)
	require.NoError(t, IsPermutationOfUniverse(cards))
	assert.NotEqual(t, Universe(), cards)
}

func TestIsPermutationOfUniverseDetectsDuplicates(t *testing.T) {
	cards := Universe()
	cards[5] = cards[6]
	assert.ErrorContains(t, IsPermutationOfUniverse(cards), "duplicate")
	assert.ErrorContains(t, IsPermutationOfUniverse(cards[:10]), "expected 48")
}

func TestParseDeck(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("# scripted deck\n\n")
	for _, c := range Universe() {
		fmt.Fprintf(&sb, "suit = %d, number = %d,\n", c.Suit, c.Rank)
	}
	cards, err := ParseDeck(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, Universe(), cards)
}

func TestParseDeckErrors(t *testing.T) {
	_, err := ParseDeck(strings.NewReader("suit = 9, number = 1,\n"))
	assert.ErrorContains(t, err, "line 1")

	_, err = ParseDeck(strings.NewReader("garbage\n"))
	assert.ErrorContains(t, err, "expected")

	_, err = ParseDeck(strings.NewReader("suit = 0, number = 1,\n"))
	assert.ErrorContains(t, err, "scripted deck")

	_, err = ParseDeck(strings.NewReader("suit = 0, number = 99999999999999999999999,\n"))
	assert.ErrorIs(t, err, strconv.ErrRange)
	assert.ErrorContains(t, err, "line 1: number")
}
