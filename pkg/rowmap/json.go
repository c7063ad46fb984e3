package rowmap

import (
	"encoding/json"
	"fmt"
	"reflect"
)

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// jsonTarget scans a jsonb/TEXT column into the struct field behind ref.
type jsonTarget struct {
	ref any
}

// Scan implements sql.Scanner; pgx honours it for jsonb columns as well.
func (t *jsonTarget) Scan(src any) error {
	dst := reflect.ValueOf(t.ref).Elem()
	dst.Set(reflect.Zero(dst.Type()))
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("json column: unsupported source %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, t.ref)
}
