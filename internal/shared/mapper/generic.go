// Package mapper holds generic helpers for converting persistence rows to
// domain entities.
package mapper

import "fmt"

// MapSlicePtrWithID converts rows one by one. Nil rows and nil results are
// dropped. The first conversion error aborts the batch and names the row
// it came from.
func MapSlicePtrWithID[T any, R any, ID any](
	items []*T,
	mapFunc func(*T) (*R, error),
	getID func(*T) ID,
) ([]*R, error) {
	if items == nil {
		return nil, nil
	}

	result := make([]*R, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		mapped, err := mapFunc(item)
		if err != nil {
			return nil, fmt.Errorf("failed to map row %v: %w", getID(item), err)
		}
		if mapped != nil {
			result = append(result, mapped)
		}
	}
	return result, nil
}
