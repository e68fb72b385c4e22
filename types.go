package fluency

// PluralCategory is a CLDR plural category name used as a variant key.
type PluralCategory string

const (
	PluralZero  PluralCategory = "zero"
	PluralOne   PluralCategory = "one"
	PluralTwo   PluralCategory = "two"
	PluralFew   PluralCategory = "few"
	PluralMany  PluralCategory = "many"
	PluralOther PluralCategory = "other"
)

// Entry is one top level item of a parsed resource.
type Entry interface {
	entry()
}

// MessageEntry is a public, formattable entry.
type MessageEntry struct {
	ID         string
	Value      *Pattern
	Attributes []*AttributeEntry
	Comment    string
}

// TermEntry is a private entry referenced as -id from patterns.
type TermEntry struct {
	ID         string
	Value      *Pattern
	Attributes []*AttributeEntry
	Comment    string
}

// AttributeEntry is a named sub-pattern of a message or term.
type AttributeEntry struct {
	ID    string
	Value *Pattern
}

// Junk is the slice of source rejected by the parser.
type Junk struct {
	Content string
	Err     *ParseError
}

func (*MessageEntry) entry() {}
func (*TermEntry) entry()    {}
func (*Junk) entry()         {}

func (m *MessageEntry) attribute(id string) (*AttributeEntry, bool) {
	for _, attr := range m.Attributes {
		if attr.ID == id {
			return attr, true
		}
	}
	return nil, false
}

func (t *TermEntry) attribute(id string) (*AttributeEntry, bool) {
	for _, attr := range t.Attributes {
		if attr.ID == id {
			return attr, true
		}
	}
	return nil, false
}

// Pattern is the resolvable body of a message, term or attribute.
type Pattern struct {
	Elements []PatternElement
}

// PatternElement is either TextElement or Placeable.
type PatternElement interface {
	patternElement()
}

type TextElement struct {
	Value string
}

type Placeable struct {
	Expression Expression
}

func (*TextElement) patternElement() {}
func (*Placeable) patternElement()   {}

// Expression is any expression allowed inside a placeable.
type Expression interface {
	expression()
}

type StringLiteral struct {
	Value string
}

// NumberLiteral keeps the source text so precision survives ("1.50").
type NumberLiteral struct {
	Raw string
}

type VariableReference struct {
	ID string
}

type MessageReference struct {
	ID        string
	Attribute string
}

type TermReference struct {
	ID        string
	Attribute string
	Arguments *CallArguments
}

type FunctionReference struct {
	ID        string
	Arguments *CallArguments
}

type SelectExpression struct {
	Selector Expression
	Variants []*Variant
}

type CallArguments struct {
	Positional []Expression
	Named      []*NamedArgument
}

type NamedArgument struct {
	Name  string
	Value Expression
}

// Variant is one branch of a select expression. Key is either an
// *Identifier or a *NumberLiteral.
type Variant struct {
	Key     VariantKey
	Value   *Pattern
	Default bool
}

type VariantKey interface {
	variantKey()
}

type Identifier struct {
	Name string
}

func (*StringLiteral) expression()     {}
func (*NumberLiteral) expression()     {}
func (*VariableReference) expression() {}
func (*MessageReference) expression()  {}
func (*TermReference) expression()     {}
func (*FunctionReference) expression() {}
func (*SelectExpression) expression()  {}
func (*Placeable) expression()         {}

func (*Identifier) variantKey()    {}
func (*NumberLiteral) variantKey() {}
