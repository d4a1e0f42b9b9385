package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PolarWolf314/docuvault/internal/configs"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/utils"
)

// Provider supplies the account when a session connects.
type Provider interface {
	RequestAccount(ctx context.Context) (string, error)
}

// Session is the current wallet connection. The zero value is not usable;
// call NewSession.
type Session struct {
	mu        sync.Mutex
	provider  Provider
	account   string
	listeners map[int]func(string)
	nextID    int
}

// NewSession returns a disconnected session backed by p.
func NewSession(p Provider) *Session {
	return &Session{provider: p, listeners: make(map[int]func(string))}
}

// CurrentAccount returns the connected account, or "" when disconnected.
func (s *Session) CurrentAccount() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// Connect requests an account from the provider.
func (s *Session) Connect(ctx context.Context) error {
	account, err := s.provider.RequestAccount(ctx)
	if err != nil {
		return err
	}
	if !utils.IsValidAccount(account) {
		return fmt.Errorf("%w: %q", kerrors.ErrInvalidAccount, account)
	}
	s.set(account)
	return nil
}

// Disconnect clears the account.
func (s *Session) Disconnect() {
	s.set("")
}

// OnChange registers f to be called with the new account whenever it
// changes. The returned function unregisters f.
func (s *Session) OnChange(f func(account string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = f
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) set(account string) {
	s.mu.Lock()
	if s.account == account {
		s.mu.Unlock()
		return
	}
	s.account = account
	listeners := make([]func(string), 0, len(s.listeners))
	for _, f := range s.listeners {
		listeners = append(listeners, f)
	}
	s.mu.Unlock()

	for _, f := range listeners {
		f(account)
	}
}

// StaticProvider always returns Account.
type StaticProvider struct {
	Account string
}

func (p StaticProvider) RequestAccount(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Account == "" {
		return "", kerrors.ErrWalletDisconnected
	}
	return p.Account, nil
}

// ConfigProvider returns the account persisted in the user config.
type ConfigProvider struct {
	// RequireConnected fails the request unless the persisted session is
	// marked connected, so a disconnect survives across invocations.
	RequireConnected bool
}

func (p ConfigProvider) RequestAccount(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	config, err := configs.LoadUserConfig()
	if err != nil {
		return "", err
	}
	w := config.Wallet
	if w.Account == "" || (p.RequireConnected && !w.Connected) {
		return "", kerrors.ErrWalletDisconnected
	}
	return w.Account, nil
}

// Remember persists account as the connected wallet.
func Remember(account string) error {
	if !utils.IsValidAccount(account) {
		return fmt.Errorf("%w: %q", kerrors.ErrInvalidAccount, account)
	}
	config, err := configs.EnsureUserConfig()
	if err != nil {
		return err
	}
	config.Wallet = configs.Wallet{
		Account:     account,
		Connected:   true,
		ConnectedAt: time.Now().UTC(),
	}
	return configs.SaveUserConfig(config)
}

// Forget marks the persisted wallet as disconnected. The last account is
// kept so a later connect can reuse it.
func Forget() error {
	config, err := configs.LoadUserConfig()
	if err != nil {
		return err
	}
	config.Wallet.Connected = false
	return configs.SaveUserConfig(config)
}
