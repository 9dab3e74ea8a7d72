package glass

import (
	"fmt"
	"reflect"
	"strings"
)

// Schema is a registry of record types, so that tools can resolve a type by
// name. Types are added at init time and never removed.
type Schema struct {
	types  []AnyType
	byName map[string]AnyType
}

// AnyType is the untyped view of a *Type[R].
type AnyType interface {
	Name() string
	Fields() []string
	RowType() reflect.Type
	Order(bag Bag) []FieldValue
}

// Type is a named record type whose records are R values.
type Type[R any] struct {
	name string
	info *structInfo
}

// AddType defines a record type. It panics on a duplicate or malformed name,
// or if R is not a struct with at least one exported field.
func AddType[R any](scm *Schema, name string) *Type[R] {
	if name == "" || strings.ContainsAny(name, ": \t\r\n") {
		panic(fmt.Errorf("glass: invalid record type name %q", name))
	}
	t := &Type[R]{
		name: name,
		info: reflectType(reflect.TypeOf((*R)(nil)).Elem()),
	}
	if scm != nil {
		scm.add(t)
	}
	return t
}

func (scm *Schema) add(t AnyType) {
	if scm.byName == nil {
		scm.byName = make(map[string]AnyType)
	}
	if scm.byName[t.Name()] != nil {
		panic(fmt.Errorf("glass: duplicate record type %q", t.Name()))
	}
	scm.types = append(scm.types, t)
	scm.byName[t.Name()] = t
}

func (scm *Schema) Types() []AnyType {
	return scm.types
}

// TypeNamed returns nil if no type has that name.
func (scm *Schema) TypeNamed(name string) AnyType {
	return scm.byName[name]
}

func (t *Type[R]) Name() string { return t.name }

func (t *Type[R]) String() string { return t.name }

func (t *Type[R]) Fields() []string { return t.info.fieldNames() }

func (t *Type[R]) RowType() reflect.Type { return t.info.typ }

func (t *Type[R]) Order(bag Bag) []FieldValue { return orderBag(t.info, bag) }
