package backends

import (
	"encoding/json"
	"errors"
	"testing"
)

type aStruct struct {
	Thing string
}

func TestInMemoryBackend_GetAndSetKey(t *testing.T) {
	backend := &InMemoryBackend{}

	var config interface{}

	if err := backend.Init(config); err != nil {
		t.Fatal("Error raised on init: ", err)
	}

	saveVal := aStruct{Thing: "Test"}
	keyName := "test-key"

	sErr := backend.SetKey(keyName, saveVal)
	if sErr != nil {
		t.Error("Error raised on set key: ", sErr)
	}

	target := aStruct{}
	vErr := backend.GetKey(keyName, &target)

	if vErr != nil {
		t.Error("Error raised on get key: ", vErr)
	}

	if target.Thing != saveVal.Thing {
		t.Error("Expected 'Test' as key val, got: ", target.Thing)
	}
}

func TestInMemoryBackend_NotInitialised(t *testing.T) {
	backend := &InMemoryBackend{}
	if err := backend.SetKey("k", aStruct{}); err == nil {
		t.Error("Expected an error when setting a key on an uninitialised store")
	}
}

func TestInMemoryBackend_NotFound(t *testing.T) {
	backend := &InMemoryBackend{}
	backend.Init(nil)

	err := backend.GetKey("missing", &aStruct{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}
}

func TestInMemoryBackend_GetAllKeepsInsertionOrder(t *testing.T) {
	backend := &InMemoryBackend{}
	backend.Init(nil)

	for _, k := range []string{"c", "a", "b"} {
		if err := backend.SetKey(k, aStruct{Thing: k}); err != nil {
			t.Fatal(err)
		}
	}
	// overwriting keeps the original position
	backend.SetKey("c", aStruct{Thing: "c2"})

	if err := backend.DeleteKey("a"); err != nil {
		t.Fatal(err)
	}
	if err := backend.DeleteKey("never-set"); err != nil {
		t.Errorf("Deleting a missing key should not fail: %v", err)
	}

	all := backend.GetAll()
	if len(all) != 2 {
		t.Fatalf("Expected 2 values, got %d", len(all))
	}

	want := []string{"c2", "b"}
	for i, raw := range all {
		got := aStruct{}
		if err := json.Unmarshal([]byte(raw.(string)), &got); err != nil {
			t.Fatal(err)
		}
		if got.Thing != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got.Thing)
		}
	}
}
