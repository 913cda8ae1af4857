package prefs

import "errors"

// Sentinel errors for facade operations. Type-dispatch failures surface as
// value.ErrUnsupportedType and handle conflicts as
// datastore.ErrHandleConflict; neither is translated here.
var (
	// ErrNoValue is returned by GetString when the key is absent and no
	// default was supplied. The other typed getters always carry a default.
	ErrNoValue = errors.New("no stored value and no default")
	// ErrTimeout is returned when an operation's bounded wait expires.
	ErrTimeout = errors.New("operation timed out")
)
