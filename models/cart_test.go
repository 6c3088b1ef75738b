package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func bearSeries() (Product, Spec, Spec) {
	product := Product{ID: 1, SeriesName: "小熊系列"}
	specA := Spec{ID: 1, ProductID: 1, SpecName: "站姿", Price: 120}
	specB := Spec{ID: 2, ProductID: 1, SpecName: "坐姿", Price: 150}
	return product, specA, specB
}

func TestCartAdd(t *testing.T) {
	product, specA, _ := bearSeries()

	cart := NewCart()
	assert.True(t, cart.IsEmpty())

	cart.Add(product, specA, 2)
	assert.False(t, cart.IsEmpty())

	lines := cart.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 120, lines[0].UnitPrice)
	assert.Equal(t, "小熊系列", lines[0].SeriesName)
}

func TestCartAdd_MergesSameLine(t *testing.T) {
	product, specA, _ := bearSeries()

	cart := NewCart()
	cart.Add(product, specA, 1)
	cart.Add(product, specA, 3)

	lines := cart.Lines()
	assert.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
}

func TestCartAdd_NonPositiveRemovesLine(t *testing.T) {
	product, specA, _ := bearSeries()

	cart := NewCart()
	cart.Add(product, specA, 2)
	cart.Add(product, specA, -2)
	assert.True(t, cart.IsEmpty())

	// Going below zero also drops the line
	cart.Add(product, specA, 1)
	cart.Add(product, specA, -5)
	assert.True(t, cart.IsEmpty())
}

func TestCartRemoveAndClear(t *testing.T) {
	product, specA, specB := bearSeries()

	cart := NewCart()
	cart.Add(product, specA, 1)
	cart.Add(product, specB, 1)

	cart.Remove(product.ID, specA.SpecName)
	assert.Len(t, cart.Lines(), 1)

	cart.Clear()
	assert.True(t, cart.IsEmpty())
}

func TestCartLines_Deterministic(t *testing.T) {
	productA, specA, specB := bearSeries()
	productB := Product{ID: 2, SeriesName: "貓貓系列"}
	specC := Spec{ID: 3, ProductID: 2, SpecName: "趴姿", Price: 90}

	cart := NewCart()
	cart.Add(productB, specC, 1)
	cart.Add(productA, specB, 1)
	cart.Add(productA, specA, 1)

	lines := cart.Lines()
	assert.Len(t, lines, 3)
	// Ordered by product then spec name, not insertion order
	assert.Equal(t, "坐姿", lines[0].SpecName)
	assert.Equal(t, "站姿", lines[1].SpecName)
	assert.Equal(t, "趴姿", lines[2].SpecName)
}

func TestCartTotal(t *testing.T) {
	product, specA, specB := bearSeries()

	cart := NewCart()
	cart.Add(product, specA, 2) // 240
	cart.Add(product, specB, 1) // 150

	assert.Equal(t, 390, cart.Total())
}

func TestCartContentBlock(t *testing.T) {
	product, specA, specB := bearSeries()

	cart := NewCart()
	cart.Add(product, specB, 1)
	cart.Add(product, specA, 2)

	expected := "小熊系列 - 坐姿 x1 (NT$ 150)\n小熊系列 - 站姿 x2 (NT$ 240)"
	assert.Equal(t, expected, cart.ContentBlock())
}

func TestCartContentBlock_Empty(t *testing.T) {
	assert.Equal(t, "", NewCart().ContentBlock())
}
