// Package failure defines the error kinds surfaced by the interview core.
// Callers branch on Kind instead of testing concrete error types.
package failure

import (
	"errors"
	"fmt"

	"github.com/spigell/recruitai/internal/ai"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindQuota means the daily cap of a tier was reached.
	KindQuota
	// KindTransport covers network and model service failures.
	KindTransport
	// KindInitialization means a session could not be started.
	KindInitialization
	// KindGeneration means a structured report could not be produced.
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindQuota:
		return "quota"
	case KindTransport:
		return "transport"
	case KindInitialization:
		return "initialization"
	case KindGeneration:
		return "generation"
	default:
		return "unknown"
	}
}

// Error carries the kind together with the operation and, for quota errors, the tier.
type Error struct {
	Kind Kind
	Op   string
	Tier ai.Tier
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindQuota:
		return fmt.Sprintf("daily quota exceeded for %s tier", e.Tier)
	case e.Err != nil && e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// QuotaExceeded reports that the daily cap of tier is reached.
func QuotaExceeded(tier ai.Tier) error {
	return &Error{Kind: KindQuota, Op: "check quota", Tier: tier}
}

func Transport(op string, err error) error {
	return wrap(KindTransport, op, err)
}

func Initialization(op string, err error) error {
	return wrap(KindInitialization, op, err)
}

func Generation(op string, err error) error {
	return wrap(KindGeneration, op, err)
}

// wrap never hides a quota failure: it is returned as is.
func wrap(kind Kind, op string, err error) error {
	if IsQuota(err) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

func IsQuota(err error) bool {
	return KindOf(err) == KindQuota
}

// TierOf returns the tier of a quota failure, or "" for any other error.
func TierOf(err error) ai.Tier {
	var fe *Error
	if errors.As(err, &fe) && fe.Kind == KindQuota {
		return fe.Tier
	}
	return ""
}
