package refgo

import (
	"errors"
	"io"
	"reflect"

	"github.com/hupe1980/refgo/alloc"
)

// Deleter destroys an adopted payload. P is *T for scalar payloads and []T
// for slice payloads.
//
// Delete is called exactly once, by the release of the last strong
// reference. Deleters are expected not to fail; an error is reported to that
// caller as a *DestroyError and the block is reclaimed regardless.
type Deleter[P any] interface {
	Delete(p P) error
}

// DeleterFunc adapts a function to Deleter.
type DeleterFunc[P any] func(p P) error

// Delete implements Deleter.
func (f DeleterFunc[P]) Delete(p P) error { return f(p) }

// DefaultDeleter closes *T or T when it implements io.Closer and zeroes the value.
type DefaultDeleter[T any] struct{}

// Delete implements Deleter.
func (DefaultDeleter[T]) Delete(p *T) error { return destroyValue(p) }

// DefaultSliceDeleter destroys every element like DefaultDeleter, last element first.
type DefaultSliceDeleter[T any] struct{}

// Delete implements Deleter.
func (DefaultSliceDeleter[T]) Delete(s []T) error { return destroyElems(s) }

// sliceDeleter destroys the elements of a factory-made slice and returns the
// backing storage to the allocator it came from.
type sliceDeleter[T any, A alloc.Allocator] struct {
	alloc A
	n     int
}

func (d sliceDeleter[T, A]) Delete(s []T) error {
	s = s[:d.n]
	defer alloc.FreeSlice(d.alloc, s)
	return destroyElems(s)
}

var closerType = reflect.TypeFor[io.Closer]()

type closeMode uint8

const (
	closeNone closeMode = iota
	closePointer
	closeValue
)

func closeModeOf[T any]() closeMode {
	t := reflect.TypeFor[T]()
	switch {
	case reflect.PointerTo(t).Implements(closerType):
		return closePointer
	case t.Kind() == reflect.Interface || t.Implements(closerType):
		return closeValue
	default:
		return closeNone
	}
}

func destroyValue[T any](p *T) error {
	return destroyWith(closeModeOf[T](), p)
}

// destroyWith closes *p according to mode and zeroes it, even if Close panics.
func destroyWith[T any](mode closeMode, p *T) error {
	defer func() {
		var zero T
		*p = zero
	}()

	switch mode {
	case closePointer:
		return any(p).(io.Closer).Close()
	case closeValue:
		v := any(*p)
		c, ok := v.(io.Closer)
		if !ok || isNilRef(v) {
			return nil
		}
		return c.Close()
	default:
		return nil
	}
}

func isNilRef(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func destroyElems[T any](s []T) error {
	mode := closeModeOf[T]()
	if mode == closeNone {
		clear(s)
		return nil
	}
	var errs []error
	for i := len(s) - 1; i >= 0; i-- {
		if err := destroyWith(mode, &s[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
