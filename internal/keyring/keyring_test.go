package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://reto@localhost:5432/reto21d?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
}

func TestGetNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteConnectionString() on empty keyring = %v, want %v", err, ErrNotFound)
	}
}

func TestNamedSecrets(t *testing.T) {
	gokeyring.MockInit()
	k := &Keyring{Service: "reto21d-test"}

	if err := k.Set("api-token", "s3cret"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := k.Set("api-token", ""); err == nil {
		t.Error("expected error for empty secret")
	}

	got, err := k.Get("api-token")
	if err != nil || got != "s3cret" {
		t.Errorf("Get = %q, %v", got, err)
	}

	if err := k.Delete("api-token"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := k.Get("api-token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if !k.IsAvailable() {
		t.Error("mock keyring should report available")
	}
}

func TestUnavailableKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus unreachable"))
	defer gokeyring.MockInit()

	if _, err := GetConnectionString(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("expected ErrKeyringUnavailable, got %v", err)
	}
	if Default().IsAvailable() {
		t.Error("IsAvailable should be false when the backend errors")
	}
}
