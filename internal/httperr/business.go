package httperr

import "errors"

// ===============================
// Business error kinds
// ===============================

// Kind is the closed set of failure categories. Every failure path in
// the core maps to exactly one kind.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindForbidden         Kind = "forbidden"
	KindValidation        Kind = "validation"
	KindReconciliation    Kind = "reconciliation_failure"
)

type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func NotFoundErr(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

func InvalidTransitionErr(code string) error {
	return BusinessError{Kind: KindInvalidTransition, Code: code}
}

func ForbiddenErr(code string) error {
	return BusinessError{Kind: KindForbidden, Code: code}
}

func ValidationErr(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func ReconciliationErr(code string) error {
	return BusinessError{Kind: KindReconciliation, Code: code}
}

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
