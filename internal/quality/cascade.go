// File: internal/quality/cascade.go
package quality

import (
	"fmt"

	"github.com/dashvolt/grabbit-cli/api/schemas"
)

// Cascade walks a fixed descending ladder of resolution caps. It is
// consulted only after a fetch succeeded but the artifact busted the
// delivery ceiling; ordinary failures never advance the ladder.
//
// Pure and stateless: the current position lives in the constraint itself.
type Cascade struct {
	heights  []int
	maxBytes int64
}

// New builds a cascade from a strictly descending ladder of heights. A
// trailing zero step means "smallest available". maxBytes is the delivery
// ceiling attached to every constraint.
func New(heights []int, maxBytes int64) (*Cascade, error) {
	if len(heights) == 0 {
		return nil, fmt.Errorf("quality: ladder must not be empty")
	}
	for i := 1; i < len(heights); i++ {
		if heights[i] >= heights[i-1] {
			return nil, fmt.Errorf("quality: ladder must be strictly descending (step %d: %d >= %d)",
				i, heights[i], heights[i-1])
		}
	}
	return &Cascade{heights: append([]int(nil), heights...), maxBytes: maxBytes}, nil
}

// Top returns the loosest constraint, the starting point of every
// acquisition.
func (c *Cascade) Top() schemas.Constraint {
	return schemas.Constraint{MaxHeight: c.heights[0], MaxBytes: c.maxBytes}
}

// Next returns the step strictly below current, or ok=false once the floor
// is reached. A constraint whose height does not sit on the ladder (e.g.
// from a caller-supplied override) drops to the first ladder step below it.
func (c *Cascade) Next(current schemas.Constraint) (next schemas.Constraint, ok bool) {
	for _, h := range c.heights {
		if h < current.MaxHeight {
			return schemas.Constraint{MaxHeight: h, MaxBytes: current.MaxBytes}, true
		}
	}
	return schemas.Constraint{}, false
}

// Steps reports the ladder length, which bounds how many downgrades any
// acquisition can possibly take.
func (c *Cascade) Steps() int {
	return len(c.heights)
}
