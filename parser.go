package fluency

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// parser is a single pass, fault tolerant reader for FTL sources. Every
// parse function returns a *ParseError describing the first problem found;
// the resource loop turns it into a Junk entry spanning the rejected bytes.
type parser struct {
	src string
	pos int
}

// patternPart is an intermediate pattern piece used to compute the common
// indentation of block patterns before elements are built.
type patternPart struct {
	text      string
	indent    int
	isIndent  bool
	placeable *Placeable
}

func (p *parser) parse() ([]Entry, []*ParseError) {
	var (
		body    []Entry
		errs    []*ParseError
		comment string
	)

	p.skipBlankBlock()
	for !p.eof() {
		start := p.pos

		if p.current() == '#' {
			text, level, err := p.parseComment()
			if err != nil {
				body, errs = p.junk(body, errs, start, err)
				comment = ""
				p.skipBlankBlock()
				continue
			}
			// only a standalone comment directly above an entry belongs to it
			if level == 1 && !p.eof() && !p.atLineEnd() && p.current() != '#' {
				comment = text
			} else {
				comment = ""
			}
			p.skipBlankBlock()
			continue
		}

		entry, err := p.parseEntry()
		if err != nil {
			body, errs = p.junk(body, errs, start, err)
		} else {
			switch e := entry.(type) {
			case *MessageEntry:
				e.Comment = comment
			case *TermEntry:
				e.Comment = comment
			}
			body = append(body, entry)
		}
		comment = ""
		p.skipBlankBlock()
	}

	return body, errs
}

func (p *parser) junk(body []Entry, errs []*ParseError, start int, err *ParseError) ([]Entry, []*ParseError) {
	if p.pos <= start {
		p.pos = start + 1
	}
	p.skipToNextEntryStart()

	err.Start = start
	err.End = p.pos
	body = append(body, &Junk{Content: p.src[start:p.pos], Err: err})
	return body, append(errs, err)
}

func (p *parser) skipToNextEntryStart() {
	for !p.eof() {
		lineStart := p.pos == 0 || p.src[p.pos-1] == '\n'
		if lineStart {
			c := p.src[p.pos]
			if isASCIIAlpha(c) || c == '-' || c == '#' {
				return
			}
		}
		p.pos++
	}
}

func (p *parser) parseComment() (string, int, *ParseError) {
	var (
		lines []string
		level int
	)

	for !p.eof() && p.current() == '#' {
		start := p.pos
		n := 0
		for !p.eof() && p.current() == '#' && n < 3 {
			p.pos++
			n++
		}
		if level == 0 {
			level = n
		} else if n != level {
			p.pos = start
			break
		}

		switch {
		case p.eof() || p.atLineEnd():
			lines = append(lines, "")
		case p.current() == ' ':
			p.pos++
			lineStart := p.pos
			for !p.eof() && !p.atLineEnd() {
				p.pos++
			}
			lines = append(lines, p.src[lineStart:p.pos])
		default:
			return "", 0, p.errorf(ParseInvalidComment, "")
		}

		if p.eof() {
			break
		}
		p.consumeLineEnd()
	}

	return strings.Join(lines, "\n"), level, nil
}

func (p *parser) parseEntry() (Entry, *ParseError) {
	c := p.current()
	switch {
	case c == '-':
		return p.parseTerm()
	case isASCIIAlpha(c):
		return p.parseMessage()
	default:
		return nil, p.errorf(ParseExpectedEntry, "")
	}
}

func (p *parser) parseMessage() (Entry, *ParseError) {
	id, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipBlankInline()
	if err := p.expect('='); err != nil {
		return nil, err
	}

	value, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}
	if value == nil && len(attrs) == 0 {
		return nil, p.errorf(ParseMissingValue, id)
	}

	return &MessageEntry{ID: id, Value: value, Attributes: attrs}, nil
}

func (p *parser) parseTerm() (Entry, *ParseError) {
	p.pos++ // '-'
	id, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipBlankInline()
	if err := p.expect('='); err != nil {
		return nil, err
	}

	value, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, p.errorf(ParseExpectedTermValue, "-"+id)
	}
	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}

	return &TermEntry{ID: id, Value: value, Attributes: attrs}, nil
}

func (p *parser) parseAttributes() ([]*AttributeEntry, *ParseError) {
	var attrs []*AttributeEntry
	for {
		save := p.pos
		if !p.skipBlankBlock() {
			p.pos = save
			return attrs, nil
		}
		p.skipBlankInline()
		if p.eof() || p.current() != '.' {
			p.pos = save
			return attrs, nil
		}
		p.pos++

		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		p.skipBlankInline()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		value, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, p.errorf(ParseExpectedAttributeValue, id)
		}
		attrs = append(attrs, &AttributeEntry{ID: id, Value: value})
	}
}

// parsePattern reads inline and block text until the pattern ends. A nil
// pattern means the value was empty.
func (p *parser) parsePattern() (*Pattern, *ParseError) {
	var parts []patternPart
	commonIndent := -1

	p.skipBlankInline()
	for !p.eof() {
		c := p.current()
		switch {
		case c == '{':
			ph, err := p.parsePlaceable()
			if err != nil {
				return nil, err
			}
			parts = append(parts, patternPart{placeable: ph})
		case c == '}':
			return nil, p.errorf(ParseUnbalancedClosingBrace, "")
		case p.atLineEnd():
			save := p.pos
			breaks, indent := 0, 0
			for p.consumeLineEnd() {
				breaks++
				indent = p.skipBlankInline()
				if !p.atLineEnd() {
					break
				}
			}
			if p.eof() || indent == 0 || !isBlockTextStart(p.current()) {
				p.pos = save
				return buildPattern(parts, commonIndent), nil
			}
			// leading line breaks of a block pattern are not content
			if len(parts) > 0 {
				for i := 0; i < breaks; i++ {
					parts = append(parts, patternPart{text: "\n"})
				}
			}
			parts = append(parts, patternPart{isIndent: true, indent: indent})
			if commonIndent < 0 || indent < commonIndent {
				commonIndent = indent
			}
		default:
			start := p.pos
			for !p.eof() {
				c := p.current()
				if c == '{' || c == '}' || p.atLineEnd() {
					break
				}
				p.pos++
			}
			parts = append(parts, patternPart{text: p.src[start:p.pos]})
		}
	}

	return buildPattern(parts, commonIndent), nil
}

func buildPattern(parts []patternPart, commonIndent int) *Pattern {
	var (
		elements []PatternElement
		text     strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			elements = append(elements, &TextElement{Value: text.String()})
			text.Reset()
		}
	}

	for _, part := range parts {
		switch {
		case part.placeable != nil:
			flush()
			elements = append(elements, part.placeable)
		case part.isIndent:
			if width := part.indent - commonIndent; width > 0 {
				text.WriteString(strings.Repeat(" ", width))
			}
		default:
			text.WriteString(part.text)
		}
	}
	flush()

	if n := len(elements); n > 0 {
		if last, ok := elements[n-1].(*TextElement); ok {
			last.Value = strings.TrimRight(last.Value, " \n\r")
			if last.Value == "" {
				elements = elements[:n-1]
			}
		}
	}
	if len(elements) == 0 {
		return nil
	}
	return &Pattern{Elements: elements}
}

func (p *parser) parsePlaceable() (*Placeable, *ParseError) {
	p.pos++ // '{'
	p.skipBlank()

	expr, err := p.parseInlineExpression()
	if err != nil {
		return nil, err
	}
	p.skipBlank()

	if strings.HasPrefix(p.src[p.pos:], "->") {
		if err := checkSelector(expr, p); err != nil {
			return nil, err
		}
		p.pos += 2
		p.skipBlankInline()

		variants, err := p.parseVariants()
		if err != nil {
			return nil, err
		}
		p.skipBlank()
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		return &Placeable{Expression: &SelectExpression{Selector: expr, Variants: variants}}, nil
	}

	if ref, ok := expr.(*TermReference); ok && ref.Attribute != "" {
		return nil, p.errorf(ParseTermAttributeAsPlaceable, ref.ID)
	}
	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return &Placeable{Expression: expr}, nil
}

func checkSelector(expr Expression, p *parser) *ParseError {
	switch e := expr.(type) {
	case *MessageReference:
		return p.errorf(ParseMessageReferenceAsSelector, e.ID)
	case *TermReference:
		if e.Attribute == "" {
			return p.errorf(ParseTermReferenceAsSelector, e.ID)
		}
	}
	return nil
}

func (p *parser) parseVariants() ([]*Variant, *ParseError) {
	var (
		variants  []*Variant
		defaulted bool
	)

	for {
		save := p.pos
		p.skipBlank()

		isDefault := false
		if !p.eof() && p.current() == '*' {
			isDefault = true
			p.pos++
		}
		if p.eof() || p.current() != '[' {
			if isDefault {
				return nil, p.errorf(ParseExpectedToken, "[")
			}
			p.pos = save
			break
		}
		if isDefault {
			if defaulted {
				return nil, p.errorf(ParseMultipleDefaultVariants, "")
			}
			defaulted = true
		}

		key, err := p.parseVariantKey()
		if err != nil {
			return nil, err
		}
		value, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, p.errorf(ParseMissingVariantValue, "")
		}
		variants = append(variants, &Variant{Key: key, Value: value, Default: isDefault})
	}

	if len(variants) == 0 {
		return nil, p.errorf(ParseMissingVariants, "")
	}
	if !defaulted {
		return nil, p.errorf(ParseMissingDefaultVariant, "")
	}
	return variants, nil
}

func (p *parser) parseVariantKey() (VariantKey, *ParseError) {
	p.pos++ // '['
	p.skipBlank()

	var key VariantKey
	if p.eof() {
		return nil, p.errorf(ParseInvalidVariantKey, "")
	}
	switch c := p.current(); {
	case isDigit(c) || c == '-':
		num, err := p.parseNumber()
		if err != nil {
			return nil, p.errorf(ParseInvalidVariantKey, "")
		}
		key = num
	case isASCIIAlpha(c):
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		key = &Identifier{Name: id}
	default:
		return nil, p.errorf(ParseInvalidVariantKey, "")
	}

	p.skipBlank()
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return key, nil
}

func (p *parser) parseInlineExpression() (Expression, *ParseError) {
	if p.eof() {
		return nil, p.errorf(ParseExpectedInlineExpression, "")
	}

	c := p.current()
	switch {
	case c == '"':
		return p.parseString()
	case isDigit(c), c == '-' && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]):
		return p.parseNumber()
	case c == '-':
		p.pos++
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		ref := &TermReference{ID: id}
		if attr, ok, err := p.parseAttributeAccessor(); err != nil {
			return nil, err
		} else if ok {
			ref.Attribute = attr
		}
		args, err := p.parseCallArguments()
		if err != nil {
			return nil, err
		}
		ref.Arguments = args
		return ref, nil
	case c == '$':
		p.pos++
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return &VariableReference{ID: id}, nil
	case c == '{':
		return p.parsePlaceable()
	case isASCIIAlpha(c):
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		args, err := p.parseCallArguments()
		if err != nil {
			return nil, err
		}
		if args != nil {
			if !isCallee(id) {
				return nil, p.errorf(ParseForbiddenCallee, id)
			}
			return &FunctionReference{ID: id, Arguments: args}, nil
		}
		ref := &MessageReference{ID: id}
		if attr, ok, err := p.parseAttributeAccessor(); err != nil {
			return nil, err
		} else if ok {
			ref.Attribute = attr
		}
		return ref, nil
	default:
		return nil, p.errorf(ParseExpectedInlineExpression, "")
	}
}

func (p *parser) parseAttributeAccessor() (string, bool, *ParseError) {
	if p.eof() || p.current() != '.' {
		return "", false, nil
	}
	p.pos++
	id, err := p.parseIdentifier()
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// parseCallArguments returns nil when no argument list follows.
func (p *parser) parseCallArguments() (*CallArguments, *ParseError) {
	save := p.pos
	p.skipBlank()
	if p.eof() || p.current() != '(' {
		p.pos = save
		return nil, nil
	}
	p.pos++

	args := &CallArguments{}
	seen := map[string]struct{}{}
	for {
		p.skipBlank()
		if p.eof() {
			return nil, p.errorf(ParseExpectedToken, ")")
		}
		if p.current() == ')' {
			break
		}

		expr, err := p.parseInlineExpression()
		if err != nil {
			return nil, err
		}
		p.skipBlank()

		if ref, ok := expr.(*MessageReference); ok && ref.Attribute == "" && !p.eof() && p.current() == ':' {
			p.pos++
			p.skipBlank()
			value, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			if _, dup := seen[ref.ID]; dup {
				return nil, p.errorf(ParseDuplicatedNamedArgument, ref.ID)
			}
			seen[ref.ID] = struct{}{}
			args.Named = append(args.Named, &NamedArgument{Name: ref.ID, Value: value})
		} else {
			if len(args.Named) > 0 {
				return nil, p.errorf(ParsePositionalArgumentFollowsNamed, "")
			}
			args.Positional = append(args.Positional, expr)
		}

		p.skipBlank()
		if p.eof() {
			return nil, p.errorf(ParseExpectedToken, ")")
		}
		switch p.current() {
		case ',':
			p.pos++
			continue
		case ')':
		default:
			return nil, p.errorf(ParseExpectedToken, ")")
		}
		break
	}
	p.pos++ // ')'
	return args, nil
}

func (p *parser) parseLiteral() (Expression, *ParseError) {
	if p.eof() {
		return nil, p.errorf(ParseExpectedLiteral, "")
	}
	c := p.current()
	switch {
	case c == '"':
		return p.parseString()
	case isDigit(c) || c == '-':
		return p.parseNumber()
	default:
		return nil, p.errorf(ParseExpectedLiteral, "")
	}
}

func (p *parser) parseString() (*StringLiteral, *ParseError) {
	p.pos++ // '"'
	var b strings.Builder
	for {
		if p.eof() || p.atLineEnd() {
			return nil, p.errorf(ParseUnterminatedStringLiteral, "")
		}
		c := p.current()
		switch c {
		case '"':
			p.pos++
			return &StringLiteral{Value: b.String()}, nil
		case '\\':
			p.pos++
			if p.eof() {
				return nil, p.errorf(ParseUnterminatedStringLiteral, "")
			}
			switch esc := p.current(); esc {
			case '\\', '"':
				b.WriteByte(esc)
				p.pos++
			case 'u', 'U':
				width := 4
				if esc == 'U' {
					width = 6
				}
				p.pos++
				end := p.pos + width
				if end > len(p.src) {
					end = len(p.src)
				}
				digits := p.src[p.pos:end]
				code, err := strconv.ParseUint(digits, 16, 32)
				if len(digits) != width || err != nil || !utf8.ValidRune(rune(code)) {
					return nil, p.errorf(ParseInvalidUnicodeEscape, string(esc)+digits)
				}
				b.WriteRune(rune(code))
				p.pos = end
			default:
				_, size := utf8.DecodeRuneInString(p.src[p.pos:])
				return nil, p.errorf(ParseUnknownEscapeSequence, p.src[p.pos:p.pos+size])
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) parseNumber() (*NumberLiteral, *ParseError) {
	start := p.pos
	if p.current() == '-' {
		p.pos++
	}
	if p.skipDigits() == 0 {
		return nil, p.errorf(ParseExpectedLiteral, "")
	}
	if !p.eof() && p.current() == '.' {
		p.pos++
		if p.skipDigits() == 0 {
			return nil, p.errorf(ParseExpectedLiteral, "")
		}
	}
	return &NumberLiteral{Raw: p.src[start:p.pos]}, nil
}

func (p *parser) parseIdentifier() (string, *ParseError) {
	start := p.pos
	if p.eof() || !isASCIIAlpha(p.current()) {
		return "", p.errorf(ParseExpectedIdentifier, "")
	}
	p.pos++
	for !p.eof() {
		c := p.current()
		if !isASCIIAlpha(c) && !isDigit(c) && c != '_' && c != '-' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) expect(c byte) *ParseError {
	if p.eof() || p.current() != c {
		return p.errorf(ParseExpectedToken, string(c))
	}
	p.pos++
	return nil
}

func (p *parser) errorf(kind ParseErrorKind, detail string) *ParseError {
	return &ParseError{Kind: kind, Detail: detail, Start: p.pos, End: p.pos}
}

func (p *parser) eof() bool     { return p.pos >= len(p.src) }
func (p *parser) current() byte { return p.src[p.pos] }

func (p *parser) atLineEnd() bool {
	if p.eof() {
		return false
	}
	if p.src[p.pos] == '\n' {
		return true
	}
	return p.src[p.pos] == '\r' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n'
}

func (p *parser) consumeLineEnd() bool {
	if !p.atLineEnd() {
		return false
	}
	if p.src[p.pos] == '\r' {
		p.pos++
	}
	p.pos++
	return true
}

func (p *parser) skipBlankInline() int {
	start := p.pos
	for !p.eof() && p.current() == ' ' {
		p.pos++
	}
	return p.pos - start
}

// skipBlankBlock consumes whole blank lines and reports whether any line end
// was consumed.
func (p *parser) skipBlankBlock() bool {
	consumed := false
	for {
		save := p.pos
		p.skipBlankInline()
		if p.consumeLineEnd() {
			consumed = true
			continue
		}
		if !p.eof() {
			p.pos = save
		}
		return consumed
	}
}

func (p *parser) skipBlank() {
	for !p.eof() && (p.current() == ' ' || p.atLineEnd()) {
		if !p.consumeLineEnd() {
			p.pos++
		}
	}
}

func (p *parser) skipDigits() int {
	start := p.pos
	for !p.eof() && isDigit(p.current()) {
		p.pos++
	}
	return p.pos - start
}

func isASCIIAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }

func isBlockTextStart(c byte) bool {
	switch c {
	case '.', '[', '*', '}':
		return false
	}
	return true
}

func isCallee(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= 'A' && c <= 'Z') && !isDigit(c) && c != '_' && c != '-' {
			return false
		}
	}
	return id != "" && id[0] >= 'A' && id[0] <= 'Z'
}
