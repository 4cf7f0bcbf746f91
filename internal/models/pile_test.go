package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandAtBoundsCheck(t *testing.T) {
	h := NewHand(Card{Oros, 1}, Card{Copas, 2})

	c, err := h.At(1)
	require.NoError(t, err)
	assert.Equal(t, Card{Copas, 2}, c)

	_, err = h.At(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = h.At(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestHandAddRemove(t *testing.T) {
	h := NewHand()
	for r := Rank(1); r <= 8; r++ {
		h.Add(Card{Oros, r})
	}
	require.Equal(t, 8, h.Len())
	assert.Equal(t, 36, h.RankSum())

	require.NoError(t, h.Remove(Card{Oros, 4}))
	assert.False(t, h.Contains(Card{Oros, 4}))
	assert.ErrorIs(t, h.Remove(Card{Oros, 4}), ErrCardNotHeld)

	c, err := h.RemoveAt(0)
	require.NoError(t, err)
	assert.Equal(t, Card{Oros, 1}, c)
	assert.Equal(t, 6, h.Len())
}

func TestHandInsertionCursorWraps(t *testing.T) {
	h := NewHand()
	for i := 0; i < HandSize+1; i++ {
		assert.Equal(t, i, h.Add(CardFromIndex(i)))
	}
	assert.Equal(t, 0, h.Add(CardFromIndex(20)), "cursor wraps after eight cards")

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 0, h.Add(CardFromIndex(0)))
}

func TestHandCardsIsACopy(t *testing.T) {
	h := NewHand(Card{Oros, 1})
	cards := h.Cards()
	cards[0] = Card{Bastos, 12}
	c, _ := h.At(0)
	assert.Equal(t, Card{Oros, 1}, c)
}

func TestDrawPileDrawsFromFront(t *testing.T) {
	p := NewDrawPile([]Card{{Oros, 1}, {Oros, 2}})
	c, err := p.Draw()
	require.NoError(t, err)
	assert.Equal(t, Card{Oros, 1}, c)
	_, err = p.Draw()
	require.NoError(t, err)
	_, err = p.Draw()
	assert.ErrorIs(t, err, ErrEmptyPile)
	assert.True(t, p.Empty())
}

func TestDiscardPileTopAndRecycle(t *testing.T) {
	p := NewDiscardPile()
	_, ok := p.Top()
	assert.False(t, ok)
	_, err := p.Take()
	assert.ErrorIs(t, err, ErrEmptyPile)

	p.Push(Card{Oros, 1})
	p.Push(Card{Copas, 2})
	p.Push(Card{Espadas, 3})
	top, ok := p.Top()
	require.True(t, ok)
	assert.Equal(t, Card{Espadas, 3}, top)

	under := p.TakeAllButTop()
	assert.Equal(t, []Card{{Oros, 1}, {Copas, 2}}, under)
	assert.Equal(t, 1, p.Len())

	d := NewDrawPile(nil)
	d.Refill(under, rand.New(rand.NewSource(1)))
	assert.ElementsMatch(t, under, d.Cards())
}
