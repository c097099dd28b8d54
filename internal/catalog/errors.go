package catalog

import (
	"errors"
	"fmt"
)

// Error kinds reported by the gateway. Match with errors.Is.
var (
	ErrNetwork = errors.New("network error")
	ErrDecode  = errors.New("decode error")
)

// FetchError is returned by every gateway call that fails.
type FetchError struct {
	Op   string // e.g. "rawg games", "giphy translate"
	Kind error  // ErrNetwork or ErrDecode
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{e.Kind, e.Err} }

func networkErr(op string, err error) error { return &FetchError{Op: op, Kind: ErrNetwork, Err: err} }
func decodeErr(op string, err error) error  { return &FetchError{Op: op, Kind: ErrDecode, Err: err} }
