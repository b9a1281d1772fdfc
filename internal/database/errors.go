package database

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindInconsistentDatumType   ErrorKind = "InconsistentDatumType"
	KindDuplicateUsage          ErrorKind = "DuplicateUsage"
	KindMultipleProducers       ErrorKind = "MultipleProducers"
	KindNoProducerForDynamicPcd ErrorKind = "NoProducerForDynamicPcd"
	KindInvalidFeatureFlagType  ErrorKind = "InvalidFeatureFlagType"
	KindInvalidKeyComponent     ErrorKind = "InvalidKeyComponent"
	KindInvalidModuleIdentity   ErrorKind = "InvalidModuleIdentity"
	KindInvalidDefaultValue     ErrorKind = "InvalidDefaultValue"
	KindInvalidDeclaration      ErrorKind = "InvalidDeclaration"
	KindUnknownToken            ErrorKind = "UnknownToken"
	KindIntegrity               ErrorKind = "IntegrityViolation"
)

// Error is a build fatal PCD error. It names the token and the modules
// involved so the build driver can report them.
type Error struct {
	Kind    ErrorKind
	Token   TokenKey
	Modules []string
	Reason  string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Token != "" {
		fmt.Fprintf(&b, " for %s", e.Token)
	}
	if len(e.Modules) > 0 {
		fmt.Fprintf(&b, " in %s", strings.Join(e.Modules, ", "))
	}
	if e.Reason != "" {
		b.WriteString("; ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is matches on kind only, so errors.Is(err, ErrMultipleProducers) works
// whatever token the error was raised for.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInconsistentDatumType   = &Error{Kind: KindInconsistentDatumType}
	ErrDuplicateUsage          = &Error{Kind: KindDuplicateUsage}
	ErrMultipleProducers       = &Error{Kind: KindMultipleProducers}
	ErrNoProducerForDynamicPcd = &Error{Kind: KindNoProducerForDynamicPcd}
	ErrInvalidFeatureFlagType  = &Error{Kind: KindInvalidFeatureFlagType}
	ErrInvalidKeyComponent     = &Error{Kind: KindInvalidKeyComponent}
	ErrInvalidModuleIdentity   = &Error{Kind: KindInvalidModuleIdentity}
	ErrInvalidDefaultValue     = &Error{Kind: KindInvalidDefaultValue}
	ErrInvalidDeclaration      = &Error{Kind: KindInvalidDeclaration}
	ErrUnknownToken            = &Error{Kind: KindUnknownToken}
	ErrIntegrity               = &Error{Kind: KindIntegrity}

	ErrSealed = errors.New("database is resolved; no further declarations accepted")
)

func newError(kind ErrorKind, token TokenKey, reason string, modules ...string) *Error {
	return &Error{Kind: kind, Token: token, Modules: modules, Reason: reason}
}

// IsBuildFatal reports whether err came out of PCD validation.
func IsBuildFatal(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
