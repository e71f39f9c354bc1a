package testkit

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"solver/internal/pattern"
)

// CheckSeqInvariants runs the structural invariants of a validated sequence:
// 1) splitting slot by slot visits every element exactly once, in order
// 2) every constructor's ArgsLen window stays inside its enclosing slot
// 3) concatenating the slots reproduces the original elements
func CheckSeqInvariants(seq pattern.Seq) error {
	elems := seq.Elements()
	if len(elems) == 0 {
		return fmt.Errorf("empty sequence")
	}

	var visited []pattern.Element
	for slot := range seq.All() {
		slotElems := slot.Elements()
		if len(slotElems) == 0 {
			return fmt.Errorf("empty slot after %d elements", len(visited))
		}
		if err := checkWindows(slotElems); err != nil {
			return fmt.Errorf("slot at %d: %w", len(visited), err)
		}
		visited = append(visited, slotElems...)
	}

	if !slices.Equal(visited, elems) {
		return fmt.Errorf("round trip mismatch: visited %d of %d elements", len(visited), len(elems))
	}
	return nil
}

func checkWindows(elems []pattern.Element) error {
	for i, e := range elems {
		if e.Kind != pattern.ElemConstructor {
			if e.ArgsLen != 0 {
				return fmt.Errorf("element %d: non-constructor with ArgsLen %d", i, e.ArgsLen)
			}
			continue
		}
		end, err := safecast.Conv[uint32](i + 1 + e.ArgsLen)
		if err != nil {
			return fmt.Errorf("element %d: ArgsLen overflow: %w", i, err)
		}
		if int(end) > len(elems) {
			return fmt.Errorf("element %d: window end %d beyond slot of %d", i, end, len(elems))
		}
	}
	return nil
}
