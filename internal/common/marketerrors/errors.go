// Package marketerrors contains generic typed errors shared across packages.
//
// If multiple errors occur in some function (e.g., if several input vectors are
// malformed), that function should return an error of type multierror.Error from
// package github.com/hashicorp/go-multierror that encapsulates those individual
// errors.
package marketerrors

import (
	"fmt"
)

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "tolerance"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for field %q", err.Value, err.Name)
	} else {
		return fmt.Sprintf("value %v is invalid for field %q; %s", err.Value, err.Name, err.Message)
	}
}
