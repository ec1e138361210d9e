package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyQuantityDeltaClamps(t *testing.T) {
	assert.Equal(t, 0, ApplyQuantityDelta(0, -1))
	assert.Equal(t, 1, ApplyQuantityDelta(0, 1))
	assert.Equal(t, 0, ApplyQuantityDelta(2, -5))
	assert.Equal(t, 3, ApplyQuantityDelta(2, 1))

	// no delta sequence can go negative
	q := 0
	for _, d := range []int{-1, -1, 2, -5, 1, -1, -1} {
		q = ApplyQuantityDelta(q, d)
		assert.GreaterOrEqual(t, q, 0)
	}
}

func TestExpandRoomInstances(t *testing.T) {
	got := ExpandRoomInstances([]RoomQuantity{{Name: "Bedroom", Quantity: 3}})
	assert.Equal(t, []string{"Bedroom 1", "Bedroom 2", "Bedroom 3"}, got)

	got = ExpandRoomInstances([]RoomQuantity{{Name: "Bedroom", Quantity: 1}})
	assert.Equal(t, []string{"Bedroom"}, got)

	got = ExpandRoomInstances([]RoomQuantity{
		{Name: "Bedroom", Quantity: 2},
		{Name: "Kitchen", Quantity: 1},
		{Name: "Garage", Quantity: 0},
	})
	assert.Equal(t, []string{"Bedroom 1", "Bedroom 2", "Kitchen"}, got)

	assert.Empty(t, ExpandRoomInstances(nil))
}

func TestMergeQuantities(t *testing.T) {
	merged := MergeQuantities([]RoomQuantity{
		{Name: "Kitchen", Quantity: 2},
		{Name: "Ballroom", Quantity: 4}, // not in catalog, dropped
	})

	assert.Len(t, merged, len(RoomTypes))
	byName := map[string]int{}
	for _, r := range merged {
		byName[r.Name] = r.Quantity
	}
	assert.Equal(t, 2, byName["Kitchen"])
	assert.Equal(t, 0, byName["Bedroom"])
	assert.NotContains(t, byName, "Ballroom")
}

func TestDiffRoomDesigns(t *testing.T) {
	server := map[string]RoomDesign{
		"Bedroom 1": {Name: "Bedroom 1", Color: "#fff", Style: "modern"},
		"Kitchen":   {Name: "Kitchen", Color: "#eee", Style: "rustic"},
	}

	// unchanged pending entry is filtered out
	diff := DiffRoomDesigns(server, []RoomDesign{
		{Name: "Bedroom 1", Color: "#fff", Style: "modern"},
	})
	assert.Empty(t, diff)

	// changed color survives; unknown room is new and survives
	diff = DiffRoomDesigns(server, []RoomDesign{
		{Name: "Bedroom 1", Color: "#000", Style: "modern"},
		{Name: "Bedroom 2", Color: "#abc", Style: "boho"},
		{Name: "Kitchen", Color: "#eee", Style: "rustic"},
	})
	assert.Equal(t, []RoomDesign{
		{Name: "Bedroom 1", Color: "#000", Style: "modern"},
		{Name: "Bedroom 2", Color: "#abc", Style: "boho"},
	}, diff)
}

func TestStageTransitions(t *testing.T) {
	assert.Equal(t, StageInterior, StageFloorPlan.Next())
	assert.Equal(t, StageExterior, StageInterior.Next())
	assert.Equal(t, StageExterior, StageExterior.Next())

	assert.True(t, StageFloorPlan.CanAdvance(StageInterior))
	assert.True(t, StageInterior.CanAdvance(StageInterior))
	assert.False(t, StageFloorPlan.CanAdvance(StageExterior), "skipping a stage is illegal")
	assert.False(t, StageExterior.CanAdvance(StageInterior), "moving backward is illegal")

	_, err := StageFloorPlan.Advance(StageExterior)
	assert.Error(t, err)

	next, err := StageFloorPlan.Advance(StageInterior)
	assert.NoError(t, err)
	assert.Equal(t, StageInterior, next)
}
