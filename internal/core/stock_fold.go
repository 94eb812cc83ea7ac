package core

// ClampedAdd returns max(0, current+delta).
func ClampedAdd(current, delta int) int {
	if next := current + delta; next > 0 {
		return next
	}
	return 0
}

// MovementDelta converts a logged movement into the signed change it applies:
// +q for in, -q for out and q unchanged for adjustments.
func MovementDelta(t MovementType, quantity int) int {
	switch t {
	case MovementIn:
		return quantity
	case MovementOut:
		return -quantity
	default:
		return quantity
	}
}

// FoldMovements replays movements in log order from zero, clamping after every step.
// The result is the quantity a consistent StockLevel must hold.
func FoldMovements(movements []StockMovement) int {
	level := 0
	for _, m := range movements {
		level = ClampedAdd(level, MovementDelta(m.MovementType, m.Quantity))
	}
	return level
}
