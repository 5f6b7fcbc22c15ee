package refgo_test

import (
	"testing"

	"github.com/hupe1980/refgo"
)

func BenchmarkMake(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		s, _ := refgo.Make(42)
		_ = s.Release()
	}
}

func BenchmarkMakeSlice(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		s, _ := refgo.MakeSlice[float32](256)
		_ = s.Release()
	}
}

func BenchmarkClone(b *testing.B) {
	s, _ := refgo.Make(42)
	defer s.Release()

	b.ReportAllocs()
	for b.Loop() {
		c := s.Clone()
		_ = c.Release()
	}
}

func BenchmarkCloneParallel(b *testing.B) {
	s, _ := refgo.Make(42)
	defer s.Release()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c := s.Clone()
			_ = c.Release()
		}
	})
}

func BenchmarkLock(b *testing.B) {
	s, _ := refgo.Make(42)
	defer s.Release()
	w := s.Weak()
	defer w.Release()

	b.ReportAllocs()
	for b.Loop() {
		l := w.Lock()
		_ = l.Release()
	}
}

func BenchmarkLockParallel(b *testing.B) {
	s, _ := refgo.Make(42)
	defer s.Release()
	w := s.Weak()
	defer w.Release()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l := w.Lock()
			_ = l.Release()
		}
	})
}
