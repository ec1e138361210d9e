package workspace

import "fmt"

// RoomTypes is the fixed catalog of room types offered by the workspace.
// Persisted quantities are merged over this list; unknown types default to 0.
var RoomTypes = []string{
	"Bedroom",
	"Bathroom",
	"Kitchen",
	"Living Room",
	"Dining Room",
	"Office",
	"Garage",
}

// RoomQuantity pairs a room-type name with how many of it the floor has.
type RoomQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ApplyQuantityDelta adds delta to current and clamps the result at zero.
// Quantities can never go negative regardless of the delta sequence.
func ApplyQuantityDelta(current, delta int) int {
	q := current + delta
	if q < 0 {
		return 0
	}
	return q
}

// MergeQuantities projects persisted rows onto the fixed catalog, in catalog
// order. Types without a persisted row come back with quantity 0; persisted
// names outside the catalog are dropped.
func MergeQuantities(persisted []RoomQuantity) []RoomQuantity {
	byName := make(map[string]int, len(persisted))
	for _, r := range persisted {
		byName[r.Name] = r.Quantity
	}
	out := make([]RoomQuantity, 0, len(RoomTypes))
	for _, name := range RoomTypes {
		out = append(out, RoomQuantity{Name: name, Quantity: byName[name]})
	}
	return out
}

// ExpandRoomInstances turns quantities into uniquely named instances.
// Quantity 1 keeps the bare name; quantity N produces "Name 1" .. "Name N".
// Zero and negative quantities expand to nothing. Expansion is deterministic:
// input order is preserved and numbering is 1-indexed.
func ExpandRoomInstances(rooms []RoomQuantity) []string {
	var out []string
	for _, r := range rooms {
		switch {
		case r.Quantity == 1:
			out = append(out, r.Name)
		case r.Quantity > 1:
			for i := 1; i <= r.Quantity; i++ {
				out = append(out, fmt.Sprintf("%s %d", r.Name, i))
			}
		}
	}
	return out
}

// RoomDesign is the color/style selection of one room instance.
type RoomDesign struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Style string `json:"style"`
}

// DiffRoomDesigns returns the subset of pending selections that differ from
// the server-known state, preserving pending order. Rooms the user never
// touched are absent from pending and therefore never resubmitted; touched
// rooms whose values match the server are filtered out too, so an empty
// result means there is nothing to save.
func DiffRoomDesigns(server map[string]RoomDesign, pending []RoomDesign) []RoomDesign {
	var out []RoomDesign
	for _, p := range pending {
		cur, ok := server[p.Name]
		if ok && cur.Color == p.Color && cur.Style == p.Style {
			continue
		}
		out = append(out, p)
	}
	return out
}
