// Package rowmap translates between camelCase view models and snake_case database rows.
//
// Each entity declares one Schema: an explicit table of (view name, column, field reference)
// entries. Field references are closures over the struct, so a renamed or mistyped Go field fails
// to compile instead of silently dropping data.
package rowmap

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	// ErrUnknownField is returned when a patch names a field the schema does not define.
	ErrUnknownField = errors.New("unknown field")
	// ErrReadOnlyField is returned when a patch names a gateway-assigned field (id, creation time).
	ErrReadOnlyField = errors.New("read-only field")
)

// Row is a persisted row keyed by snake_case column name.
type Row map[string]any

// Field maps one struct field to one column.
type Field[T any] struct {
	View     string
	Column   string
	Ref      func(*T) any
	JSON     bool
	ReadOnly bool
}

// Col declares a scalar column. ref must return a pointer to the struct field.
func Col[T any](view, column string, ref func(*T) any) Field[T] {
	return Field[T]{View: view, Column: column, Ref: ref}
}

// JSONCol declares a column holding the JSON encoding of a nested value (jsonb / TEXT).
func JSONCol[T any](view, column string, ref func(*T) any) Field[T] {
	return Field[T]{View: view, Column: column, Ref: ref, JSON: true}
}

// Order is the default listing order of a collection.
type Order struct {
	Column string
	Desc   bool
}

// Schema is the bidirectional mapping table of one entity collection.
type Schema[T any] struct {
	Table   string
	Key     string // id column
	Created string // creation timestamp column
	Order   Order
	Fields  []Field[T]
}

// Columns returns the column names in declaration order.
func (s *Schema[T]) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Map converts a view model into its row.
func (s *Schema[T]) Map(v T) (Row, error) {
	row := make(Row, len(s.Fields))
	for _, f := range s.Fields {
		val, err := f.value(&v)
		if err != nil {
			return nil, fmt.Errorf("map %s.%s: %w", s.Table, f.Column, err)
		}
		row[f.Column] = val
	}
	return row, nil
}

// Unmap converts a row back into its view model. Columns missing from row keep their zero value.
func (s *Schema[T]) Unmap(row Row) (T, error) {
	var v T
	for _, f := range s.Fields {
		src, ok := row[f.Column]
		if !ok {
			continue
		}
		if err := f.assign(&v, src); err != nil {
			return v, fmt.Errorf("unmap %s.%s: %w", s.Table, f.Column, err)
		}
	}
	return v, nil
}

// Values returns the values of row for the given columns, in order, ready to bind as arguments.
func (s *Schema[T]) Values(row Row, columns []string) []any {
	args := make([]any, len(columns))
	for i, c := range columns {
		args[i] = driverValue(row[c])
	}
	return args
}

// ScanTargets returns one scan destination per column of Columns(), pointing into v.
func (s *Schema[T]) ScanTargets(v *T) []any {
	targets := make([]any, len(s.Fields))
	for i, f := range s.Fields {
		if f.JSON {
			targets[i] = &jsonTarget{ref: f.Ref(v)}
			continue
		}
		targets[i] = f.Ref(v)
	}
	return targets
}

// ID returns the key of v.
func (s *Schema[T]) ID(v *T) string {
	for _, f := range s.Fields {
		if f.Column == s.Key {
			if p, ok := f.Ref(v).(*string); ok {
				return *p
			}
		}
	}
	return ""
}

// Stamp sets the key and creation timestamp of v.
func (s *Schema[T]) Stamp(v *T, id, createdAt string) {
	for _, f := range s.Fields {
		p, ok := f.Ref(v).(*string)
		if !ok {
			continue
		}
		switch f.Column {
		case s.Key:
			*p = id
		case s.Created:
			*p = createdAt
		}
	}
}

// Sort orders rows in place by the schema's default order. Ties keep their relative order.
func (s *Schema[T]) Sort(rows []Row) {
	col := s.Order.Column
	if col == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := fmt.Sprint(rows[i][col]), fmt.Sprint(rows[j][col])
		if s.Order.Desc {
			return a > b
		}
		return a < b
	})
}

func (f Field[T]) value(v *T) (any, error) {
	ref := reflect.ValueOf(f.Ref(v)).Elem()
	if f.JSON {
		if isNil(ref) {
			return nil, nil
		}
		return marshalJSON(ref.Interface())
	}
	for ref.Kind() == reflect.Pointer {
		if ref.IsNil() {
			return nil, nil
		}
		ref = ref.Elem()
	}
	return ref.Interface(), nil
}

func (f Field[T]) assign(v *T, src any) error {
	if f.JSON {
		return (&jsonTarget{ref: f.Ref(v)}).Scan(src)
	}
	dst := reflect.ValueOf(f.Ref(v)).Elem()
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := convertInto(elem.Elem(), src); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	return convertInto(dst, src)
}

func convertInto(dst reflect.Value, src any) error {
	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	switch {
	case isNumeric(sv.Kind()) && isNumeric(dst.Kind()),
		sv.Kind() == reflect.String && dst.Kind() == reflect.String:
		dst.Set(sv.Convert(dst.Type()))
		return nil
	case sv.Kind() == reflect.Slice && sv.Type().Elem().Kind() == reflect.Uint8 && dst.Kind() == reflect.String:
		dst.SetString(string(sv.Bytes()))
		return nil
	case dst.Kind() == reflect.Bool && isNumeric(sv.Kind()):
		dst.SetBool(!sv.IsZero())
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", src, dst.Type())
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// driverValue reduces v to the base types every database/sql driver accepts:
// named string types become string, integers become int64.
func driverValue(v any) any {
	switch n := v.(type) {
	case nil, string, int64, float64, bool, []byte:
		return v
	case int:
		return int64(n)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	}
	return v
}
