package pageops

import "fmt"

// ValidationError reports operation parameters that do not fit the source
// document. It is raised before any page is copied.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Reason) }

func checkIndices(op string, indices []int, pageCount int) error {
	for _, idx := range indices {
		if idx < 0 || idx >= pageCount {
			return &ValidationError{
				Op:     op,
				Reason: fmt.Sprintf("page index %d outside [0,%d)", idx, pageCount),
			}
		}
	}
	return nil
}

func checkPermutation(op string, order []int, pageCount int) error {
	if len(order) != pageCount {
		return &ValidationError{
			Op:     op,
			Reason: fmt.Sprintf("order has %d entries, document has %d pages", len(order), pageCount),
		}
	}
	seen := make([]bool, pageCount)
	for _, idx := range order {
		if idx < 0 || idx >= pageCount {
			return &ValidationError{
				Op:     op,
				Reason: fmt.Sprintf("page index %d outside [0,%d)", idx, pageCount),
			}
		}
		if seen[idx] {
			return &ValidationError{
				Op:     op,
				Reason: fmt.Sprintf("page index %d appears twice", idx),
			}
		}
		seen[idx] = true
	}
	return nil
}
