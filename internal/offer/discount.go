package offer

import "math"

// Discount computes the integer discount percentage for a current and a
// list price, rounding half-up. ok is false when the pair is not a valid
// discount: both prices must be positive and the list price strictly
// greater than the current one.
func Discount(current, list float64) (int, bool) {
	if current <= 0 || list <= 0 || list <= current {
		return 0, false
	}

	d := int(math.Floor(100*(1-current/list) + 0.5))
	if d > 99 {
		d = 99
	}
	return d, true
}
