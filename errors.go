package topogen

// errors.go declares the kinds of failure reported by topology construction,
// file parsing, and subnet allocation.  Callers test for a kind with errors.Is,
// context is attached with errors.Wrapf as the failure travels up.

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidAddress flags a malformed dotted-quad or mask
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidLink flags an attempt to link two hosts
	ErrInvalidLink = errors.New("invalid link")

	// ErrSubnetsExhausted is returned when all 254 subnet octets are taken
	ErrSubnetsExhausted = errors.New("all subnets taken")

	// ErrInvalidDensity flags a density outside of (0,1]
	ErrInvalidDensity = errors.New("density must be a fractional value in (0,1]")

	// ErrUnknownGateway flags a host whose gateway ip matches no router interface
	ErrUnknownGateway = errors.New("unknown gateway")

	// ErrUnknownNode flags a link naming an undeclared host or router
	ErrUnknownNode = errors.New("unknown host or router")

	ErrMalformedDecl = errors.New("malformed declaration")
	ErrDuplicateNode = errors.New("duplicate node name")
	ErrInvalidCount  = errors.New("invalid node count")

	// ErrNoRoute is returned when two devices lie in different router components
	ErrNoRoute = errors.New("no route")
)

// ParseError reports a failure to read one line of a topology file.
// Line is 1-based, Text is the raw line as read.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("error on line %d: cannot parse %q: %v", pe.Line, pe.Text, pe.Err)
}

func (pe *ParseError) Unwrap() error {
	return pe.Err
}

// ReportErrs transforms a list of errors and transforms the non-nil ones into a single error
// with comma-separated report of all the constituent errors, and returns it.
func ReportErrs(errs []error) error {
	errMsg := make([]string, 0)
	for _, err := range errs {
		if err != nil {
			errMsg = append(errMsg, err.Error())
		}
	}
	if len(errMsg) == 0 {
		return nil
	}

	return errors.New(strings.Join(errMsg, ","))
}
