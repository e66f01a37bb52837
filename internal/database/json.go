package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JsonColumn wraps a value which is stored in a JSON/JSONB column, handling
// the marshalling to and from the database driver.
type JsonColumn[T any] struct {
	val T
}

func NewJsonColumn[T any](val T) JsonColumn[T] {
	return JsonColumn[T]{val: val}
}

func (j *JsonColumn[T]) Scan(src any) error {
	if src == nil {
		var zero T
		j.val = zero
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T in to JsonColumn", src)
	}

	return json.Unmarshal(data, &j.val)
}

func (j JsonColumn[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.val)
	if err != nil {
		return nil, errors.Join(errors.New("failed to marshal JsonColumn"), err)
	}

	return data, nil
}

func (j *JsonColumn[T]) Get() *T {
	return &j.val
}
