package value

import "errors"

// ErrUnsupportedType is returned by FromAny when the dynamic type of the
// input is outside the recognized primitive set.
var ErrUnsupportedType = errors.New("unsupported value type")
