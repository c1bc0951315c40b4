package base58check

// ErrorKind identifies a kind of codec error.  It has full support for
// errors.Is and errors.As, so the caller can directly check against an error
// kind when determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific codec Error.
const (
	// ErrInvalidLength indicates a payload, or the payload recovered from a
	// decoded string, does not have the length the variant requires.
	ErrInvalidLength = ErrorKind("ErrInvalidLength")

	// ErrChecksumMismatch indicates the trailing checksum of a decoded
	// string does not match the checksum computed over its payload.
	ErrChecksumMismatch = ErrorKind("ErrChecksumMismatch")

	// ErrInvalidNetworkByte indicates a Sha256x2 string carries a network
	// byte other than 0x80.
	ErrInvalidNetworkByte = ErrorKind("ErrInvalidNetworkByte")

	// ErrInvalidEncoding indicates the text contains characters outside of
	// the base58 alphabet.
	ErrInvalidEncoding = ErrorKind("ErrInvalidEncoding")

	// ErrUnknownVariant indicates an encoding variant that is not one of
	// K1, Sha256x2 or PubKey.
	ErrUnknownVariant = ErrorKind("ErrUnknownVariant")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies a codec error.  It has full support for errors.Is and
// errors.As, so the caller can ascertain the specific reason for the error by
// checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
