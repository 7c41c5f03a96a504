package executor

import (
	"errors"
	"testing"
)

func TestSubmitReturnsResult(t *testing.T) {
	e := New(2, nil)
	defer e.Shutdown()

	fut := Submit(e, func() (int, error) { return 42, nil })
	got, err := fut.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != 42 {
		t.Fatalf("Get() = %d, want 42", got)
	}
}

func TestSubmitPropagatesError(t *testing.T) {
	e := New(1, nil)
	defer e.Shutdown()

	wantErr := errors.New("boom")
	fut := Submit(e, func() (int, error) { return 0, wantErr })
	_, err := fut.Get()
	if !errors.Is(err, wantErr) {
		t.Fatalf("Get() error = %v, want %v", err, wantErr)
	}
}

func TestManyTasksAllComplete(t *testing.T) {
	e := New(4, nil)
	defer e.Shutdown()

	futures := make([]*Future[int], 0, 100)
	for i := 0; i < 100; i++ {
		i := i
		futures = append(futures, Submit(e, func() (int, error) { return i * i, nil }))
	}
	for i, f := range futures {
		got, err := f.Get()
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != i*i {
			t.Fatalf("Get() = %d, want %d", got, i*i)
		}
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	e := New(1, nil)
	e.Shutdown()
	e.Shutdown()
}
