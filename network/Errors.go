package network

import (
	"errors"
	"fmt"
)

// DimensionError records a mismatch between the shape a network
// expects and the shape it was given
type DimensionError struct {
	Op   string
	What string
	Want int
	Have int
}

func (d *DimensionError) Error() string {
	return fmt.Sprintf("%v: invalid number of %v \n\twant(%v) \n\thave(%v)",
		d.Op, d.What, d.Want, d.Have)
}

// IsDimensionError returns whether err is or wraps a *DimensionError
func IsDimensionError(err error) bool {
	var d *DimensionError
	return errors.As(err, &d)
}
