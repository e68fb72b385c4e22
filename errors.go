package fluency

import (
	"errors"
	"fmt"
)

// ErrMissingTranslation indicates that no message was found for locale/id.
var ErrMissingTranslation = errors.New("fluency: missing translation")

// ErrNotImplemented marks APIs that are intentionally stubbed
var ErrNotImplemented = errors.New("fluency: not implemented")

var (
	// ErrInvalidLocale is returned when a locale tag fails syntactic validation.
	ErrInvalidLocale = errors.New("fluency: invalid locale")
	// ErrMissingValue is returned when formatting a message that only has attributes.
	ErrMissingValue = errors.New("fluency: message has no value")
	// ErrStaleHandle is returned when a message or attribute outlived its bundle.
	ErrStaleHandle = errors.New("fluency: stale handle")
	// ErrNilBundle is returned when an operation receives a nil or closed bundle.
	ErrNilBundle = errors.New("fluency: nil bundle")
	// ErrNilMessage is returned when an operation receives a nil message or attribute.
	ErrNilMessage = errors.New("fluency: nil message")
	// ErrNilArgs is returned when an argument setter receives nil args.
	ErrNilArgs = errors.New("fluency: nil args")
	// ErrInvalidNumber is returned when text cannot be parsed as a decimal numeral.
	ErrInvalidNumber = errors.New("fluency: invalid number")
)

// ParseErrorKind classifies syntax problems found while parsing a resource.
type ParseErrorKind int

const (
	ParseExpectedToken ParseErrorKind = iota
	ParseExpectedIdentifier
	ParseExpectedLiteral
	ParseExpectedInlineExpression
	ParseMissingValue
	ParseUnbalancedClosingBrace
	ParseUnterminatedStringLiteral
	ParseUnknownEscapeSequence
	ParseInvalidUnicodeEscape
	ParseMissingDefaultVariant
	ParseMultipleDefaultVariants
	ParseMissingVariants
	ParseMessageReferenceAsSelector
	ParseTermReferenceAsSelector
	ParseForbiddenCallee
	ParsePositionalArgumentFollowsNamed
	ParseDuplicatedNamedArgument
	ParseInvalidVariantKey
	ParseExpectedTermValue
	ParseExpectedEntry
	ParseExpectedAttributeValue
	ParseMissingVariantValue
	ParseInvalidComment
	ParseTermAttributeAsPlaceable
)

// ParseError describes a junk entry. Start and End are byte offsets of the
// rejected slice of the source.
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
	Start  int
	End    int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%d:%d)", e.Message(), e.Start, e.End)
}

// Message returns the description without the byte range.
func (e *ParseError) Message() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ParseExpectedToken:
		return fmt.Sprintf("expected token %q", e.Detail)
	case ParseExpectedIdentifier:
		return "expected an identifier"
	case ParseExpectedLiteral:
		return "expected a string or number literal"
	case ParseExpectedInlineExpression:
		return "expected an inline expression"
	case ParseMissingValue:
		return fmt.Sprintf("expected message %q to have a value or attributes", e.Detail)
	case ParseUnbalancedClosingBrace:
		return "unbalanced closing brace"
	case ParseUnterminatedStringLiteral:
		return "unterminated string literal"
	case ParseUnknownEscapeSequence:
		return fmt.Sprintf("unknown escape sequence \\%s", e.Detail)
	case ParseInvalidUnicodeEscape:
		return fmt.Sprintf("invalid unicode escape sequence \\%s", e.Detail)
	case ParseMissingDefaultVariant:
		return "expected one of the variants to be marked as default (*)"
	case ParseMultipleDefaultVariants:
		return "a select expression can only have one default variant"
	case ParseMissingVariants:
		return "expected at least one variant after \"->\""
	case ParseMessageReferenceAsSelector:
		return "message references cannot be used as selectors"
	case ParseTermReferenceAsSelector:
		return "terms cannot be used as selectors"
	case ParseForbiddenCallee:
		return fmt.Sprintf("function names must be upper case, got %q", e.Detail)
	case ParsePositionalArgumentFollowsNamed:
		return "positional arguments must not follow named arguments"
	case ParseDuplicatedNamedArgument:
		return fmt.Sprintf("the %q argument appears twice", e.Detail)
	case ParseInvalidVariantKey:
		return "expected a number literal or an identifier as variant key"
	case ParseExpectedTermValue:
		return fmt.Sprintf("expected term %q to have a value", e.Detail)
	case ParseExpectedEntry:
		return "expected a message, term or comment"
	case ParseExpectedAttributeValue:
		return fmt.Sprintf("expected attribute %q to have a value", e.Detail)
	case ParseMissingVariantValue:
		return "expected a variant to have a value"
	case ParseInvalidComment:
		return "expected a space or line end after the comment sigil"
	case ParseTermAttributeAsPlaceable:
		return "term attributes can only be used as selectors"
	default:
		return "syntax error"
	}
}

// EntryKind tells messages and terms apart in merge diagnostics.
type EntryKind int

const (
	EntryMessage EntryKind = iota
	EntryTerm
)

func (k EntryKind) String() string {
	if k == EntryTerm {
		return "term"
	}
	return "message"
}

// OverrideError reports an identifier collision during a keep-first merge.
type OverrideError struct {
	Kind EntryKind
	ID   string
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("attempt to override an existing %s: %q", e.Kind, e.ID)
}

// ResolverErrorKind classifies problems found while formatting a pattern.
type ResolverErrorKind int

const (
	ResolveUnknownVariable ResolverErrorKind = iota
	ResolveUnknownMessage
	ResolveUnknownTerm
	ResolveUnknownAttribute
	ResolveNoValue
	ResolveUnknownFunction
	ResolveFunctionFailed
	ResolveCyclic
	ResolveTooManyPlaceables
)

// ResolverError is a non-fatal formatting diagnostic.
type ResolverError struct {
	Kind   ResolverErrorKind
	ID     string
	Reason string
}

func (e *ResolverError) Error() string {
	switch e.Kind {
	case ResolveUnknownVariable:
		return "unknown variable: $" + e.ID
	case ResolveUnknownMessage:
		return "unknown message: " + e.ID
	case ResolveUnknownTerm:
		return "unknown term: -" + e.ID
	case ResolveUnknownAttribute:
		return "unknown attribute: " + e.ID
	case ResolveNoValue:
		return "message has no value: " + e.ID
	case ResolveUnknownFunction:
		return "unknown function: " + e.ID
	case ResolveFunctionFailed:
		return fmt.Sprintf("function %s: %s", e.ID, e.Reason)
	case ResolveCyclic:
		return "cyclic reference: " + e.ID
	case ResolveTooManyPlaceables:
		return "too many placeables"
	default:
		return "resolver error"
	}
}
