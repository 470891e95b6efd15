package domain

// SlotKey is the slot-check entry consulted by the availability policy.
const SlotKey = "1"

// expectedSlotCount is the layout the slot-check upstream returns when it has data.
const expectedSlotCount = 2

// PossibleAvailability applies the slot-check policy: the mapping must hold exactly
// two entries and the entry keyed "1" must be open. Any other layout reports false.
//
// Key "1" is checked twice on purpose; the upstream contract is reproduced as-is
// until product confirms whether the second check was meant for key "2".
func PossibleAvailability(slots map[string]bool) bool {
	first, again := slots[SlotKey], slots[SlotKey]
	return first && again && len(slots) == expectedSlotCount
}
