package fluency

import (
	"strconv"
	"strings"
)

const (
	fsi = "\u2068"
	pdi = "\u2069"
)

// scope carries the state of one formatting call.
type scope struct {
	bundle     *Bundle
	args       *Args
	local      *Args
	inTerm     bool
	placeables int
	travelled  []*Pattern
	dirty      bool
	errs       []error
}

// resolved is an expression result. A failed resolution keeps the text
// rendered between braces in place of the value.
type resolved struct {
	value    Value
	failed   bool
	fallback string
}

func newScope(b *Bundle, args *Args) *scope {
	return &scope{bundle: b, args: args}
}

func (s *scope) addError(kind ResolverErrorKind, id string) {
	s.errs = append(s.errs, &ResolverError{Kind: kind, ID: id})
}

func (s *scope) formatRoot(pattern *Pattern) string {
	s.travelled = append(s.travelled, pattern)
	var out strings.Builder
	s.writePattern(&out, pattern)
	return out.String()
}

func (s *scope) writePattern(out *strings.Builder, pattern *Pattern) {
	if len(pattern.Elements) == 1 {
		if text, ok := pattern.Elements[0].(*TextElement); ok {
			out.WriteString(s.text(text.Value))
			return
		}
	}

	isolate := s.bundle.useIsolating && len(pattern.Elements) > 1
	for _, element := range pattern.Elements {
		if s.dirty {
			return
		}

		switch el := element.(type) {
		case *TextElement:
			out.WriteString(s.text(el.Value))
		case *Placeable:
			s.placeables++
			if s.placeables > s.bundle.maxPlaceables {
				s.dirty = true
				s.addError(ResolveTooManyPlaceables, "")
				return
			}

			wrap := isolate && needsIsolation(el.Expression)
			if wrap {
				out.WriteString(fsi)
			}
			s.writeExpression(out, el.Expression)
			if wrap {
				out.WriteString(pdi)
			}
		}
	}
}

func needsIsolation(expr Expression) bool {
	switch expr.(type) {
	case *MessageReference, *TermReference, *StringLiteral:
		return false
	}
	return true
}

func (s *scope) text(value string) string {
	if s.bundle.transform != nil {
		return s.bundle.transform(value)
	}
	return value
}

func (s *scope) writeExpression(out *strings.Builder, expr Expression) {
	switch e := expr.(type) {
	case *SelectExpression:
		s.writePattern(out, s.selectVariant(e).Value)
	case *Placeable:
		s.writeExpression(out, e.Expression)
	case *MessageReference:
		s.writeMessageReference(out, e)
	case *TermReference:
		s.writeTermReference(out, e)
	default:
		r := s.resolveInline(expr)
		if r.failed {
			out.WriteString("{" + r.fallback + "}")
			return
		}
		out.WriteString(s.display(r.value))
	}
}

func (s *scope) display(v Value) string {
	if n, ok := v.Number(); ok {
		return s.bundle.formatNumber(n)
	}
	text, _ := v.Text()
	return text
}

func (s *scope) writeMessageReference(out *strings.Builder, ref *MessageReference) {
	pattern, ok := s.messagePattern(ref)
	if !ok {
		out.WriteString("{" + messageFallback(ref) + "}")
		return
	}

	// messages never see the arguments of an enclosing term
	local, inTerm := s.local, s.inTerm
	s.local, s.inTerm = nil, false
	s.track(out, pattern, messageFallback(ref))
	s.local, s.inTerm = local, inTerm
}

func (s *scope) messagePattern(ref *MessageReference) (*Pattern, bool) {
	msg, ok := s.bundle.message(ref.ID)
	if !ok {
		s.addError(ResolveUnknownMessage, ref.ID)
		return nil, false
	}
	if ref.Attribute != "" {
		attr, ok := msg.attribute(ref.Attribute)
		if !ok {
			s.addError(ResolveUnknownAttribute, ref.ID+"."+ref.Attribute)
			return nil, false
		}
		return attr.Value, true
	}
	if msg.Value == nil {
		s.addError(ResolveNoValue, ref.ID)
		return nil, false
	}
	return msg.Value, true
}

func messageFallback(ref *MessageReference) string {
	if ref.Attribute != "" {
		return ref.ID + "." + ref.Attribute
	}
	return ref.ID
}

func (s *scope) writeTermReference(out *strings.Builder, ref *TermReference) {
	pattern, ok := s.termPattern(ref)
	if !ok {
		out.WriteString("{" + termFallback(ref) + "}")
		return
	}

	local, inTerm := s.local, s.inTerm
	s.local, s.inTerm = s.termArgs(ref.Arguments), true
	s.track(out, pattern, termFallback(ref))
	s.local, s.inTerm = local, inTerm
}

func (s *scope) termPattern(ref *TermReference) (*Pattern, bool) {
	term, ok := s.bundle.term(ref.ID)
	if !ok {
		s.addError(ResolveUnknownTerm, ref.ID)
		return nil, false
	}
	if ref.Attribute != "" {
		attr, ok := term.attribute(ref.Attribute)
		if !ok {
			s.addError(ResolveUnknownAttribute, "-"+ref.ID+"."+ref.Attribute)
			return nil, false
		}
		return attr.Value, true
	}
	return term.Value, true
}

func termFallback(ref *TermReference) string {
	if ref.Attribute != "" {
		return "-" + ref.ID + "." + ref.Attribute
	}
	return "-" + ref.ID
}

// termArgs evaluates named call arguments into the term local scope.
// Positional arguments are ignored for terms.
func (s *scope) termArgs(call *CallArguments) *Args {
	args := NewArgs()
	if call == nil {
		return args
	}
	for _, named := range call.Named {
		r := s.resolveInline(named.Value)
		if !r.failed {
			args.Set(named.Name, r.value)
		}
	}
	return args
}

// track writes pattern unless it is already being resolved further up.
func (s *scope) track(out *strings.Builder, pattern *Pattern, fallback string) {
	for _, seen := range s.travelled {
		if seen == pattern {
			s.addError(ResolveCyclic, fallback)
			out.WriteString("{" + fallback + "}")
			return
		}
	}
	s.travelled = append(s.travelled, pattern)
	s.writePattern(out, pattern)
	s.travelled = s.travelled[:len(s.travelled)-1]
}

// resolveInline evaluates an expression to a value, formatting references
// and nested placeables to text.
func (s *scope) resolveInline(expr Expression) resolved {
	switch e := expr.(type) {
	case *StringLiteral:
		return resolved{value: StringValue(e.Value)}
	case *NumberLiteral:
		v, err := ParseNumber(e.Raw)
		if err != nil {
			return resolved{failed: true, fallback: e.Raw}
		}
		return resolved{value: v}
	case *VariableReference:
		return s.resolveVariable(e)
	case *FunctionReference:
		return s.callFunction(e)
	default:
		var out strings.Builder
		s.writeExpression(&out, expr)
		return resolved{value: StringValue(out.String())}
	}
}

func (s *scope) resolveVariable(ref *VariableReference) resolved {
	source := s.args
	if s.inTerm {
		source = s.local
	}
	if v, ok := source.Get(ref.ID); ok {
		return resolved{value: v}
	}
	// a missing term argument is expected, not a mistake of the caller
	if !s.inTerm {
		s.addError(ResolveUnknownVariable, ref.ID)
	}
	return resolved{failed: true, fallback: "$" + ref.ID}
}

func (s *scope) callFunction(ref *FunctionReference) resolved {
	fallback := ref.ID + "()"
	fn, ok := s.bundle.functions[ref.ID]
	if !ok {
		s.addError(ResolveUnknownFunction, ref.ID)
		return resolved{failed: true, fallback: fallback}
	}

	var (
		positional []Value
		named      = NewArgs()
	)
	if ref.Arguments != nil {
		for _, arg := range ref.Arguments.Positional {
			r := s.resolveInline(arg)
			if r.failed {
				return resolved{failed: true, fallback: fallback}
			}
			positional = append(positional, r.value)
		}
		for _, arg := range ref.Arguments.Named {
			r := s.resolveInline(arg.Value)
			if r.failed {
				continue
			}
			named.Set(arg.Name, r.value)
		}
	}

	value, err := fn(positional, named)
	if err != nil {
		s.errs = append(s.errs, &ResolverError{Kind: ResolveFunctionFailed, ID: ref.ID, Reason: err.Error()})
		return resolved{failed: true, fallback: fallback}
	}
	return resolved{value: value}
}

// selectVariant picks the variant matching the selector, or the default.
func (s *scope) selectVariant(sel *SelectExpression) *Variant {
	var def *Variant
	for _, variant := range sel.Variants {
		if variant.Default {
			def = variant
			break
		}
	}

	r := s.resolveInline(sel.Selector)
	if r.failed {
		return def
	}

	for _, variant := range sel.Variants {
		if s.matches(r.value, variant.Key) {
			return variant
		}
	}
	return def
}

func (s *scope) matches(selector Value, key VariantKey) bool {
	switch k := key.(type) {
	case *Identifier:
		if text, ok := selector.Text(); ok {
			return text == k.Name
		}
		if n, ok := selector.Number(); ok {
			return string(s.bundle.pluralCategory(n)) == k.Name
		}
	case *NumberLiteral:
		n, ok := selector.Number()
		if !ok {
			return false
		}
		keyValue, err := strconv.ParseFloat(k.Raw, 64)
		return err == nil && keyValue == n.Value
	}
	return false
}
