package glass

import (
	"encoding"
	"reflect"
	"slices"
	"sort"

	"go.uber.org/zap"
)

// FieldValue is one flattened field.
type FieldValue struct {
	Name  string
	Value string
}

// Bag is the persisted form of one record: field name → payload.
type Bag map[string]string

// Mapper converts between records of type R and their flattened fields.
//
// R's exported fields, in declaration order, are the record's fields. The
// name is taken from a `glass:"name"` tag or derived as snake_case; use
// `glass:"-"` to skip a field. Strings, bools, numbers and []byte are stored
// as text, TextMarshalers as their text form, and everything else through the
// Codec. Nil pointers, slices and maps are omitted.
//
// Decoding never fails: a payload that cannot be parsed leaves the field at
// its zero value.
type Mapper[R any] struct {
	info  *structInfo
	codec Codec
	sugar *zap.SugaredLogger
}

func NewMapper[R any](codec Codec, logger *zap.Logger) *Mapper[R] {
	if codec == nil {
		codec = DefaultCodec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper[R]{
		info:  reflectType(reflect.TypeOf((*R)(nil)).Elem()),
		codec: codec,
		sugar: logger.Sugar(),
	}
}

func (m *Mapper[R]) Codec() Codec { return m.codec }

// Fields returns the field names in declaration order.
func (m *Mapper[R]) Fields() []string {
	return m.info.fieldNames()
}

func (m *Mapper[R]) HasField(name string) bool {
	return m.info.byName[name] != nil
}

func (m *Mapper[R]) Flatten(rec *R) ([]FieldValue, error) {
	v := reflect.ValueOf(rec).Elem()
	out := make([]FieldValue, 0, len(m.info.fields))
	for _, f := range m.info.fields {
		fv := v.FieldByIndex(f.index)
		if f.nilable() && fv.IsNil() {
			continue
		}
		payload, err := m.encodeField(f, fv)
		if err != nil {
			return nil, encodingErrf(m.info.typ.Name(), f.Name, err)
		}
		out = append(out, FieldValue{f.Name, payload})
	}
	return out, nil
}

func (m *Mapper[R]) encodeField(f *fieldInfo, fv reflect.Value) (string, error) {
	if f.optional {
		fv = fv.Elem()
	}
	switch f.class {
	case classScalar:
		return formatScalar(fv), nil
	case classToken:
		text, err := fv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", err
		}
		return string(text), nil
	default:
		raw, err := m.codec.Marshal(fv.Interface())
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

func (m *Mapper[R]) Unflatten(fields []FieldValue) *R {
	rec := new(R)
	v := reflect.ValueOf(rec).Elem()
	for _, fv := range fields {
		if f := m.info.byName[fv.Name]; f != nil {
			m.decodeField(f, v.FieldByIndex(f.index), fv.Value)
		}
	}
	return rec
}

func (m *Mapper[R]) FromBag(bag Bag) *R {
	rec := new(R)
	v := reflect.ValueOf(rec).Elem()
	for _, f := range m.info.fields {
		if payload, ok := bag[f.Name]; ok {
			m.decodeField(f, v.FieldByIndex(f.index), payload)
		}
	}
	return rec
}

func (m *Mapper[R]) decodeField(f *fieldInfo, fv reflect.Value, payload string) {
	var val reflect.Value
	var err error
	switch f.class {
	case classScalar:
		val, err = parseScalar(payload, f.valueType)
	case classToken:
		ptr := reflect.New(f.valueType)
		err = ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(payload))
		val = ptr.Elem()
	default:
		ptr := reflect.New(f.valueType)
		err = m.codec.Unmarshal([]byte(payload), ptr.Interface())
		val = ptr.Elem()
	}
	if err != nil {
		m.sugar.Debugw("glass: DECODE.DEFAULT", "type", m.info.typ.Name(), "field", f.Name, "class", f.class, "codec", m.codec.Name(), "err", err)
		fv.SetZero()
		return
	}
	if f.optional {
		ptr := reflect.New(f.valueType)
		ptr.Elem().Set(val)
		fv.Set(ptr)
	} else {
		fv.Set(val)
	}
}

// Order lists bag's fields in declaration order, followed by any fields R
// does not declare, sorted by name.
func (m *Mapper[R]) Order(bag Bag) []FieldValue {
	return orderBag(m.info, bag)
}

func orderBag(si *structInfo, bag Bag) []FieldValue {
	out := make([]FieldValue, 0, len(bag))
	for _, f := range si.fields {
		if payload, ok := bag[f.Name]; ok {
			out = append(out, FieldValue{f.Name, payload})
		}
	}
	var extra []string
	for name := range bag {
		if si.byName[name] == nil {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, FieldValue{name, bag[name]})
	}
	return out
}

// pick returns the named fields of a flattened record, in the order given.
// Names not present in fields are reported in absent.
func pick(fields []FieldValue, names []string) (present []FieldValue, absent []string) {
	for _, name := range names {
		i := slices.IndexFunc(fields, func(fv FieldValue) bool { return fv.Name == name })
		if i < 0 {
			absent = append(absent, name)
		} else {
			present = append(present, fields[i])
		}
	}
	return present, absent
}
