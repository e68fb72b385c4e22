package fluency

// Resource is a parsed FTL source. Parsing never fails: malformed entries
// are kept as Junk and reported through Errors.
type Resource struct {
	body []Entry
	errs []*ParseError
}

// ParseResource parses FTL text into a Resource.
func ParseResource(source string) *Resource {
	p := &parser{src: source}
	body, errs := p.parse()
	return &Resource{body: body, errs: errs}
}

// Entries returns the parsed entries in source order, junk included.
func (r *Resource) Entries() []Entry {
	if r == nil {
		return nil
	}
	return r.body
}

// Errors returns one diagnostic per junk entry.
func (r *Resource) Errors() []*ParseError {
	if r == nil {
		return nil
	}
	return r.errs
}

// Messages lists the identifiers of well-formed messages.
func (r *Resource) Messages() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.body))
	for _, entry := range r.body {
		if msg, ok := entry.(*MessageEntry); ok {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}
