package fluency

// Args maps argument names to values. Setting an existing key replaces its
// value regardless of the setter used.
type Args struct {
	values map[string]Value
	order  []string
}

// NewArgs returns an empty argument map.
func NewArgs() *Args {
	return &Args{values: make(map[string]Value)}
}

// NewArgsWithCapacity returns an empty argument map sized for n entries.
func NewArgsWithCapacity(n int) *Args {
	if n < 0 {
		n = 0
	}
	return &Args{values: make(map[string]Value, n), order: make([]string, 0, n)}
}

// Set stores value under key.
func (a *Args) Set(key string, value Value) *Args {
	if a == nil {
		return nil
	}
	if a.values == nil {
		a.values = make(map[string]Value)
	}
	if _, exists := a.values[key]; !exists {
		a.order = append(a.order, key)
	}
	a.values[key] = value
	return a
}

// SetString stores text under key.
func (a *Args) SetString(key, value string) *Args {
	return a.Set(key, StringValue(value))
}

// SetNumber stores a float under key.
func (a *Args) SetNumber(key string, value float64) *Args {
	return a.Set(key, NumberValue(value))
}

// SetInt stores an integer under key.
func (a *Args) SetInt(key string, value int64) *Args {
	return a.Set(key, NumberValue(value))
}

// SetUint stores an unsigned integer under key.
func (a *Args) SetUint(key string, value uint64) *Args {
	return a.Set(key, NumberValue(value))
}

// SetNumberFromString parses text as a decimal numeral and stores it. On
// failure the args are left unchanged.
func (a *Args) SetNumberFromString(key, text string) error {
	if a == nil {
		return ErrNilArgs
	}
	value, err := ParseNumber(text)
	if err != nil {
		return err
	}
	a.Set(key, value)
	return nil
}

// Get returns the value stored under key.
func (a *Args) Get(key string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	v, ok := a.values[key]
	return v, ok
}

// Len returns the number of keys.
func (a *Args) Len() int {
	if a == nil {
		return 0
	}
	return len(a.values)
}

// Keys returns the keys in first insertion order.
func (a *Args) Keys() []string {
	if a == nil {
		return nil
	}
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Clone returns an independent copy.
func (a *Args) Clone() *Args {
	if a == nil {
		return nil
	}
	out := NewArgsWithCapacity(len(a.values))
	for _, key := range a.order {
		out.Set(key, a.values[key])
	}
	return out
}
