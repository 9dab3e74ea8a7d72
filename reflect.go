package glass

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var typeInfoCache sync.Map

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

type fieldClass uint8

const (
	// classScalar is a string, bool, number or []byte, stored as text.
	classScalar fieldClass = iota + 1
	// classToken is a TextMarshaler (enums, ids, times).
	classToken
	// classComplex goes through the Codec.
	classComplex
)

func (c fieldClass) String() string {
	switch c {
	case classScalar:
		return "scalar"
	case classToken:
		return "token"
	case classComplex:
		return "complex"
	default:
		return strconv.Itoa(int(c))
	}
}

type fieldInfo struct {
	Name   string
	GoName string
	index  []int
	class  fieldClass

	// typ is the declared type; valueType is typ minus the optional pointer.
	typ       reflect.Type
	valueType reflect.Type
	optional  bool
}

// nilable fields that are nil are left out of the field-bag entirely.
func (f *fieldInfo) nilable() bool {
	switch f.typ.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	default:
		return false
	}
}

type structInfo struct {
	typ    reflect.Type
	fields []*fieldInfo
	byName map[string]*fieldInfo
}

func (si *structInfo) fieldNames() []string {
	names := make([]string, len(si.fields))
	for i, f := range si.fields {
		names[i] = f.Name
	}
	return names
}

func reflectType(typ reflect.Type) *structInfo {
	if v, ok := typeInfoCache.Load(typ); ok {
		return v.(*structInfo)
	}
	info := reflectTypeWithoutCache(typ)
	actual, _ := typeInfoCache.LoadOrStore(typ, info)
	return actual.(*structInfo)
}

func reflectTypeWithoutCache(typ reflect.Type) *structInfo {
	if typ.Kind() != reflect.Struct {
		panic(fmt.Errorf("%v not a struct", typ))
	}
	info := &structInfo{
		typ:    typ,
		byName: make(map[string]*fieldInfo),
	}
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := snakeCase(sf.Name)
		if tag, ok := sf.Tag.Lookup("glass"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if prev := info.byName[name]; prev != nil {
			panic(fmt.Errorf("%v: fields %s and %s both map to %q", typ, prev.GoName, sf.Name, name))
		}

		f := &fieldInfo{
			Name:      name,
			GoName:    sf.Name,
			index:     sf.Index,
			typ:       sf.Type,
			valueType: sf.Type,
		}
		f.class = classify(sf.Type)
		if f.class == 0 && sf.Type.Kind() == reflect.Pointer {
			if c := classify(sf.Type.Elem()); c != 0 {
				f.class, f.valueType, f.optional = c, sf.Type.Elem(), true
			}
		}
		if f.class == 0 {
			f.class = classComplex
		}
		info.fields = append(info.fields, f)
		info.byName[name] = f
	}
	if len(info.fields) == 0 {
		panic(fmt.Errorf("%v has no exported fields", typ))
	}
	return info
}

// classify returns 0 for types that are neither scalars nor tokens.
func classify(t reflect.Type) fieldClass {
	if t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return classToken
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return classScalar
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return classScalar
		}
	}
	return 0
}

func formatScalar(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case reflect.Slice:
		return string(v.Bytes())
	default:
		panic(fmt.Errorf("unsupported scalar kind %v", v.Kind()))
	}
}

func parseScalar(s string, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return v, err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return v, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return v, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return v, err
		}
		v.SetFloat(f)
	case reflect.Slice:
		v.SetBytes([]byte(s))
	default:
		panic(fmt.Errorf("unsupported scalar kind %v", t.Kind()))
	}
	return v, nil
}
