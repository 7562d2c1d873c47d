package value

// Field is a single key/value entry in an Object.
type Field struct {
	Key string
	Val Value
}

// Object is an ordered string-keyed mapping. Insertion order is preserved;
// setting an existing key overwrites the value in place, keeping the key's
// original position.
type Object struct {
	fields []Field
	index  map[string]int
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Set inserts or overwrites a key.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.fields[i].Val = v
		return
	}
	o.index[key] = len(o.fields)
	o.fields = append(o.fields, Field{Key: key, Val: v})
}

// Get returns the value for a key and whether it is present.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.fields[i].Val, true
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.fields)
}

// Fields returns the entries in insertion order. The slice is shared; callers
// must not modify it.
func (o *Object) Fields() []Field {
	return o.fields
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}
	return keys
}
