package render

import (
	"encoding/json"
	"fmt"
	"io"
)

type Renderer[T any] interface {
	Render(result T) error
}

// JSONRenderer writes results as indented JSON
type JSONRenderer[T any] struct {
	out io.Writer
}

// NewJSONRenderer creates a JSON renderer
func NewJSONRenderer[T any](out io.Writer) *JSONRenderer[T] {
	return &JSONRenderer[T]{out: out}
}

func (r *JSONRenderer[T]) Render(result T) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(r.out, string(data))
	return err
}
