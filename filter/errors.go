package filter

import (
	"errors"
)

var ErrMaskSize = errors.New("mask size must be equal to the number of points")
