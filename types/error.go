package types

// ErrValue represents a MOO error value: a code plus an optional attached
// message and payload value (set by raise() or a user-defined E_ code).
type ErrValue struct {
	code    ErrorCode
	message string
	value   Value
	hasMsg  bool
}

// NewErr creates a bare error value carrying only a code.
func NewErr(code ErrorCode) ErrValue {
	return ErrValue{code: code}
}

// NewErrWithMessage creates an error value with an attached message, as
// produced by raise(code, message) or a user verb's error()-style helpers.
func NewErrWithMessage(code ErrorCode, message string) ErrValue {
	return ErrValue{code: code, message: message, hasMsg: true}
}

// NewErrWithValue creates an error value carrying a message and an
// arbitrary attached payload, as produced by raise(code, message, value).
func NewErrWithValue(code ErrorCode, message string, value Value) ErrValue {
	return ErrValue{code: code, message: message, value: value, hasMsg: true}
}

// String returns the MOO string representation
func (e ErrValue) String() string {
	return e.code.String()
}

// Type returns the MOO type
func (e ErrValue) Type() TypeCode {
	return TYPE_ERR
}

// Truthy returns whether the value is truthy
// All errors are truthy
func (e ErrValue) Truthy() bool {
	return true
}

// Equal compares two values for equality
func (e ErrValue) Equal(other Value) bool {
	if o, ok := other.(ErrValue); ok {
		return e.code == o.code
	}
	return false
}

// Code returns the error code
func (e ErrValue) Code() ErrorCode {
	return e.code
}

// Message returns the attached message, falling back to the code's default
// description when none was attached.
func (e ErrValue) Message() string {
	if e.hasMsg {
		return e.message
	}
	return e.code.Message()
}

// Value returns the attached payload value and whether one was set.
func (e ErrValue) Value() (Value, bool) {
	return e.value, e.value != nil
}
