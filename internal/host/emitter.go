package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Emitter receives every committed value. Editors call Emit synchronously
// from the handler that made the change.
type Emitter interface {
	Emit(v Value) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Value) error

func (f EmitterFunc) Emit(v Value) error { return f(v) }

// Discard drops every value.
var Discard Emitter = EmitterFunc(func(Value) error { return nil })

// JSONEmitter writes each value as one line of JSON.
type JSONEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{enc: json.NewEncoder(w)}
}

func (e *JSONEmitter) Emit(v Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(v); err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	return nil
}

// Recorder keeps every emitted value in memory.
type Recorder struct {
	mu     sync.Mutex
	values []Value
}

func (r *Recorder) Emit(v Value) error {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	return nil
}

// Values returns a copy of the recorded values.
func (r *Recorder) Values() []Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Value(nil), r.values...)
}

// Len returns how many values were recorded.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Last returns the most recent value or nil.
func (r *Recorder) Last() Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return nil
	}
	return r.values[len(r.values)-1]
}

// MultiEmitter forwards values to every emitter and joins their errors.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(v Value) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
