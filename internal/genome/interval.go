// Package genome defines the chromosome, gene and function records shared by
// the sequence, index and analysis packages.
package genome

import "fmt"

// Interval is a half-open range [Start, End) on a chromosome's coordinate line.
type Interval struct {
	Start int64 // inclusive, 0-based
	End   int64 // exclusive
}

// Len returns the number of bases covered by the interval.
func (iv Interval) Len() int64 {
	return iv.End - iv.Start
}

// Overlaps reports whether two intervals share at least one base.
// Intervals that only touch at a boundary do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Validate checks that the interval is non-negative and non-empty.
func (iv Interval) Validate() error {
	if iv.Start < 0 || iv.Start >= iv.End {
		return fmt.Errorf("%w: start %d, end %d: start must be non-negative and less than end",
			ErrInvalidRange, iv.Start, iv.End)
	}
	return nil
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.Start, iv.End)
}
