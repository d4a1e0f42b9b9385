package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/PolarWolf314/docuvault/internal/configs"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

func useTempUserConfig(t *testing.T) {
	t.Helper()
	old := configs.UserDocuvaultSettings.UserConfigsPath
	configs.UserDocuvaultSettings.UserConfigsPath = t.TempDir()
	t.Cleanup(func() { configs.UserDocuvaultSettings.UserConfigsPath = old })
}

func TestSession_ConnectAndDisconnect(t *testing.T) {
	s := NewSession(StaticProvider{Account: "0xabc"})
	if got := s.CurrentAccount(); got != "" {
		t.Fatalf("Expected disconnected session, got %q", got)
	}

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if got := s.CurrentAccount(); got != "0xabc" {
		t.Errorf("Expected 0xabc, got %q", got)
	}

	s.Disconnect()
	if got := s.CurrentAccount(); got != "" {
		t.Errorf("Expected empty account after disconnect, got %q", got)
	}
}

func TestSession_ConnectWithoutAccount(t *testing.T) {
	s := NewSession(StaticProvider{})
	err := s.Connect(context.Background())
	if !errors.Is(err, kerrors.ErrWalletDisconnected) {
		t.Fatalf("Expected ErrWalletDisconnected, got %v", err)
	}
}

func TestSession_RejectsUnsafeAccount(t *testing.T) {
	s := NewSession(StaticProvider{Account: "../../etc"})
	err := s.Connect(context.Background())
	if !errors.Is(err, kerrors.ErrInvalidAccount) {
		t.Fatalf("Expected ErrInvalidAccount, got %v", err)
	}
	if s.CurrentAccount() != "" {
		t.Error("Invalid account should not be stored")
	}
}

func TestSession_OnChange(t *testing.T) {
	s := NewSession(StaticProvider{Account: "0xabc"})

	var seen []string
	unsubscribe := s.OnChange(func(account string) { seen = append(seen, account) })

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	// Same account again is not a change.
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	s.Disconnect()
	unsubscribe()
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if len(seen) != 2 || seen[0] != "0xabc" || seen[1] != "" {
		t.Errorf("Unexpected notifications: %q", seen)
	}
}

func TestConfigProvider_RememberAndForget(t *testing.T) {
	useTempUserConfig(t)
	ctx := context.Background()

	if _, err := (ConfigProvider{}).RequestAccount(ctx); !errors.Is(err, kerrors.ErrWalletDisconnected) {
		t.Fatalf("Expected ErrWalletDisconnected before connecting, got %v", err)
	}

	if err := Remember("0xabc"); err != nil {
		t.Fatalf("Remember failed: %v", err)
	}
	account, err := (ConfigProvider{RequireConnected: true}).RequestAccount(ctx)
	if err != nil {
		t.Fatalf("RequestAccount failed: %v", err)
	}
	if account != "0xabc" {
		t.Errorf("Expected 0xabc, got %q", account)
	}

	if err := Forget(); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}
	if _, err := (ConfigProvider{RequireConnected: true}).RequestAccount(ctx); !errors.Is(err, kerrors.ErrWalletDisconnected) {
		t.Errorf("Expected ErrWalletDisconnected after forget, got %v", err)
	}
	if account, err := (ConfigProvider{}).RequestAccount(ctx); err != nil || account != "0xabc" {
		t.Errorf("Expected last account to be kept, got %q, %v", account, err)
	}
}

func TestRemember_InvalidAccount(t *testing.T) {
	useTempUserConfig(t)
	if err := Remember("has space"); !errors.Is(err, kerrors.ErrInvalidAccount) {
		t.Errorf("Expected ErrInvalidAccount, got %v", err)
	}
}
