package domain

// ValueType is the storage type of a variable or attribute as found on disk.
type ValueType int

// Storage types understood by the NetCDF store.
const (
	TypeUnknown ValueType = iota
	TypeText
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
)

// String returns the lower-case type name.
func (t ValueType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// Attribute is a single named metadata entry. Text attributes use Text;
// numeric attributes use Values with Type recording the on-disk width.
type Attribute struct {
	Name   string
	Type   ValueType
	Text   string
	Values []float64
}

// TextAttr builds a text attribute.
func TextAttr(name, text string) Attribute {
	return Attribute{Name: name, Type: TypeText, Text: text}
}

// NumberAttr builds a numeric attribute of the given storage type.
func NumberAttr(name string, t ValueType, values ...float64) Attribute {
	return Attribute{Name: name, Type: t, Values: append([]float64(nil), values...)}
}

// Attributes is an ordered attribute list. Order is preserved on write.
type Attributes []Attribute

// Get returns the attribute with the given name.
func (a Attributes) Get(name string) (Attribute, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Text returns the value of a text attribute, or "" if absent.
func (a Attributes) Text(name string) string {
	if attr, ok := a.Get(name); ok && attr.Type == TypeText {
		return attr.Text
	}
	return ""
}

// Number returns the first value of a numeric attribute.
func (a Attributes) Number(name string) (float64, bool) {
	attr, ok := a.Get(name)
	if !ok || attr.Type == TypeText || len(attr.Values) == 0 {
		return 0, false
	}
	return attr.Values[0], true
}

// With returns a copy with attr set, replacing an existing entry of the same
// name in place or appending it.
func (a Attributes) With(attr Attribute) Attributes {
	out := a.Clone()
	for i := range out {
		if out[i].Name == attr.Name {
			out[i] = attr
			return out
		}
	}
	return append(out, attr)
}

// Without returns a copy with the named attributes removed.
func (a Attributes) Without(names ...string) Attributes {
	out := make(Attributes, 0, len(a))
next:
	for _, attr := range a {
		for _, n := range names {
			if attr.Name == n {
				continue next
			}
		}
		out = append(out, attr)
	}
	return out.Clone()
}

// Clone returns a deep copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for i, attr := range a {
		attr.Values = append([]float64(nil), attr.Values...)
		out[i] = attr
	}
	return out
}
