package prefs_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prefstore/prefstore/prefs"
	"github.com/prefstore/prefstore/value"
)

// openPrefs opens a store with a test-unique name; names are process-global.
func openPrefs(t *testing.T, opts ...prefs.Option) *prefs.Store {
	t.Helper()
	s, err := prefs.Open(t.TempDir(), fmt.Sprintf("prefs-%s", t.Name()), opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openPrefs(t)

	tests := []struct {
		name string
		put  any
		def  any
	}{
		{name: "int64", put: int64(42), def: int64(0)},
		{name: "string", put: "hello", def: ""},
		{name: "bool", put: true, def: false},
		{name: "float32", put: float32(1.5), def: float32(0)},
		{name: "float64", put: 2.25, def: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "rt-" + tt.name
			if err := s.Put(key, tt.put); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, err := s.Get(key, tt.def)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != tt.put {
				t.Errorf("Get() = %v (%T), want %v (%T)", got, got, tt.put, tt.put)
			}
		})
	}
}

func TestStore_GetMissingReturnsDefault(t *testing.T) {
	s := openPrefs(t)

	tests := []struct {
		name string
		def  any
	}{
		{name: "int", def: 7},
		{name: "int64", def: int64(7)},
		{name: "string", def: "fallback"},
		{name: "bool", def: true},
		{name: "float32", def: float32(0.5)},
		{name: "float64", def: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Get("never-written", tt.def)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != tt.def {
				t.Errorf("Get() = %v (%T), want default %v (%T)", got, got, tt.def, tt.def)
			}
		})
	}
}

func TestStore_IntPromotion(t *testing.T) {
	s := openPrefs(t)

	// A native int lands in the int64 slot.
	if err := s.Put("small", 3); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := s.GetInt64("small", 0)
	if err != nil {
		t.Fatalf("GetInt64() error = %v", err)
	}
	if got != 3 {
		t.Errorf("GetInt64() = %d, want 3", got)
	}

	// And reads back through the int default as an int.
	asInt, err := s.Get("small", 0)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if asInt != int(3) {
		t.Errorf("Get() = %v (%T), want int 3", asInt, asInt)
	}

	n, err := s.GetInt("small", 0)
	if err != nil {
		t.Fatalf("GetInt() error = %v", err)
	}
	if n != 3 {
		t.Errorf("GetInt() = %d, want 3", n)
	}
}

func TestStore_UnsupportedTypes(t *testing.T) {
	s := openPrefs(t)

	if err := s.Put("k", []string{"not", "a", "primitive"}); !errors.Is(err, value.ErrUnsupportedType) {
		t.Errorf("Put(slice) error = %v, want ErrUnsupportedType", err)
	}
	if err := s.Put("k", struct{ X int }{1}); !errors.Is(err, value.ErrUnsupportedType) {
		t.Errorf("Put(struct) error = %v, want ErrUnsupportedType", err)
	}
	if _, err := s.Get("k", map[string]int{}); !errors.Is(err, value.ErrUnsupportedType) {
		t.Errorf("Get(map default) error = %v, want ErrUnsupportedType", err)
	}
	if err := s.PutValue("k", value.Value{}); !errors.Is(err, value.ErrUnsupportedType) {
		t.Errorf("PutValue(zero) error = %v, want ErrUnsupportedType", err)
	}
}

func TestStore_GetString(t *testing.T) {
	s := openPrefs(t)

	// Missing key, no default: the one getter without a built-in fallback.
	if _, err := s.GetString("missing-key"); !errors.Is(err, prefs.ErrNoValue) {
		t.Errorf("GetString() error = %v, want ErrNoValue", err)
	}

	got, err := s.GetString("missing-key", "fallback")
	if err != nil {
		t.Fatalf("GetString() with default error = %v", err)
	}
	if got != "fallback" {
		t.Errorf("GetString() = %q, want %q", got, "fallback")
	}

	if err := s.Put("present", "stored"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err = s.GetString("present")
	if err != nil {
		t.Fatalf("GetString() error = %v", err)
	}
	if got != "stored" {
		t.Errorf("GetString() = %q, want %q", got, "stored")
	}
}

func TestStore_TypedGetters(t *testing.T) {
	s := openPrefs(t)

	if err := s.Put("b", true); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("f32", float32(0.5)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("f64", 0.125); err != nil {
		t.Fatal(err)
	}

	if got, err := s.GetBool("b", false); err != nil || !got {
		t.Errorf("GetBool(b) = %v, %v, want true, nil", got, err)
	}
	if got, err := s.GetBool("absent", true); err != nil || !got {
		t.Errorf("GetBool(absent) = %v, %v, want default true, nil", got, err)
	}
	if got, err := s.GetFloat32("f32", 0); err != nil || got != 0.5 {
		t.Errorf("GetFloat32(f32) = %v, %v, want 0.5, nil", got, err)
	}
	if got, err := s.GetFloat64("f64", 0); err != nil || got != 0.125 {
		t.Errorf("GetFloat64(f64) = %v, %v, want 0.125, nil", got, err)
	}
}

func TestStore_SlotsAreTypeScoped(t *testing.T) {
	s := openPrefs(t)

	// The same textual key under different types occupies distinct slots.
	if err := s.Put("volume", int64(11)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("volume", "loud"); err != nil {
		t.Fatal(err)
	}

	n, err := s.GetInt64("volume", 0)
	if err != nil || n != 11 {
		t.Errorf("GetInt64(volume) = %d, %v, want 11, nil", n, err)
	}
	str, err := s.GetString("volume")
	if err != nil || str != "loud" {
		t.Errorf("GetString(volume) = %q, %v, want loud, nil", str, err)
	}
}

func TestStore_Clear(t *testing.T) {
	s := openPrefs(t)

	if err := s.Put("a", int64(1)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("b", "two"); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if got, err := s.GetInt64("a", -1); err != nil || got != -1 {
		t.Errorf("GetInt64(a) after Clear = %d, %v, want default -1, nil", got, err)
	}
	if _, err := s.GetString("b"); !errors.Is(err, prefs.ErrNoValue) {
		t.Errorf("GetString(b) after Clear error = %v, want ErrNoValue", err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys() after Clear = %v, want none", keys)
	}
}

func TestStore_ConcurrentPutsLastCommitWins(t *testing.T) {
	s := openPrefs(t)

	const writers = 16
	var wg sync.WaitGroup
	written := make([]int64, writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			written[w] = int64(1000 + w)
			if err := s.Put("contended", written[w]); err != nil {
				t.Errorf("Put() error = %v", err)
			}
		}(w)
	}
	wg.Wait()

	got, err := s.GetInt64("contended", 0)
	if err != nil {
		t.Fatalf("GetInt64() error = %v", err)
	}
	// Commits are serialized, so the final value is exactly one of the
	// written values, never an interleaving.
	var found bool
	for _, v := range written {
		if got == v {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("GetInt64() = %d, not among the written values", got)
	}
}

func TestStore_Keys(t *testing.T) {
	s := openPrefs(t)

	for _, k := range []string{"zebra", "apple", "mango"} {
		if err := s.Put(k, true); err != nil {
			t.Fatal(err)
		}
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	want := []string{"apple", "mango", "zebra"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
