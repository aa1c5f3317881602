package fn

import (
	"errors"
	"testing"
)

func TestResultOk(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("Ok result misreports state")
	}
	v, err := r.Unwrap()
	if v != 42 || err != nil {
		t.Fatalf("unwrap: %v, %v", v, err)
	}
	if r.UnwrapOr(0) != 42 {
		t.Fatal("UnwrapOr must return the value on ok")
	}
}

func TestResultErr(t *testing.T) {
	boom := errors.New("boom")
	r := Err[int](boom)
	if r.IsOk() || !r.IsErr() {
		t.Fatal("Err result misreports state")
	}
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Fatalf("unwrap: %v", err)
	}
	if r.UnwrapOr(7) != 7 {
		t.Fatal("UnwrapOr must return the fallback on error")
	}
}

func TestErrf(t *testing.T) {
	boom := errors.New("boom")
	r := Errf[int]("stage failed: %w", boom)
	_, err := r.Unwrap()
	if !errors.Is(err, boom) {
		t.Fatalf("Errf must wrap: %v", err)
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(3, nil); r.IsErr() {
		t.Fatal("nil error must produce Ok")
	}
	if r := FromPair(0, errors.New("x")); r.IsOk() {
		t.Fatal("non-nil error must produce Err")
	}
}

func TestCollect(t *testing.T) {
	all := Collect([]Result[int]{Ok(1), Ok(2), Ok(3)})
	vals, err := all.Unwrap()
	if err != nil || len(vals) != 3 || vals[2] != 3 {
		t.Fatalf("collect ok: %v, %v", vals, err)
	}

	boom := errors.New("boom")
	bad := Collect([]Result[int]{Ok(1), Err[int](boom), Ok(3)})
	if _, err := bad.Unwrap(); !errors.Is(err, boom) {
		t.Fatalf("collect must surface the first error: %v", err)
	}
}
