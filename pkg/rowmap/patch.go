package rowmap

import "fmt"

// Patch is a partial update: the named view fields of Value are written, everything else is kept.
type Patch[T any] struct {
	Fields []string
	Value  T
}

// NewPatch builds a patch writing fields of value.
func NewPatch[T any](value T, fields ...string) Patch[T] {
	return Patch[T]{Fields: fields, Value: value}
}

// PatchRow resolves a patch into the columns it writes. A view field may span several columns.
func (s *Schema[T]) PatchRow(p Patch[T]) (Row, error) {
	if len(p.Fields) == 0 {
		return nil, fmt.Errorf("%s: empty patch", s.Table)
	}
	full, err := s.Map(p.Value)
	if err != nil {
		return nil, err
	}
	row := make(Row)
	for _, name := range p.Fields {
		matched := false
		for _, f := range s.Fields {
			if f.View != name {
				continue
			}
			if f.ReadOnly || f.Column == s.Key || f.Column == s.Created {
				return nil, fmt.Errorf("%s.%s: %w", s.Table, name, ErrReadOnlyField)
			}
			row[f.Column] = full[f.Column]
			matched = true
		}
		if !matched {
			return nil, fmt.Errorf("%s.%s: %w", s.Table, name, ErrUnknownField)
		}
	}
	return row, nil
}

// Apply writes the patched fields of p into dst.
func (s *Schema[T]) Apply(dst *T, p Patch[T]) error {
	row, err := s.PatchRow(p)
	if err != nil {
		return err
	}
	for _, f := range s.Fields {
		src, ok := row[f.Column]
		if !ok {
			continue
		}
		if err := f.assign(dst, src); err != nil {
			return fmt.Errorf("apply %s.%s: %w", s.Table, f.Column, err)
		}
	}
	return nil
}

// ViewFields returns the distinct view field names, in declaration order.
func (s *Schema[T]) ViewFields() []string {
	seen := make(map[string]bool, len(s.Fields))
	var names []string
	for _, f := range s.Fields {
		if !seen[f.View] {
			seen[f.View] = true
			names = append(names, f.View)
		}
	}
	return names
}
