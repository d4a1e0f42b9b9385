package workflows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PolarWolf314/docuvault/internal/blobstore"
	"github.com/PolarWolf314/docuvault/internal/configs"
	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ledger"
	"github.com/PolarWolf314/docuvault/internal/vault"
	"github.com/PolarWolf314/docuvault/internal/wallet"
)

// Logger receives storage diagnostics and ledger write failures. The CLI
// replaces it with one honouring --verbose and --debug.
var Logger = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// KeySource says where the user's private key comes from.
type KeySource struct {
	// Data holds the PEM private key when read from stdin. If nil, the key
	// is loaded from the user data directory.
	Data []byte

	// Passphrase is called only when the key file is sealed.
	Passphrase func() ([]byte, error)
}

// vaultEnv is the resolved vault a workflow operates on.
type vaultEnv struct {
	settings  *configs.VaultSettings
	config    *configs.VaultConfig
	catalogue *vault.Catalogue
	ledger    *ledger.FileLedger
}

// loadVault resolves the enclosing vault unless settings already point
// at one.
func loadVault() (*vaultEnv, error) {
	if configs.VaultDocuvaultSettings == nil || configs.VaultDocuvaultSettings.VaultPath == "" {
		if err := configs.InitVaultSettings(); err != nil {
			return nil, fmt.Errorf("initializing vault settings: %w", err)
		}
	}
	settings := configs.VaultDocuvaultSettings
	if settings.VaultPath == "" {
		return nil, kerrors.ErrVaultNotInitialized
	}
	if _, err := os.Stat(settings.VaultDir); errors.Is(err, os.ErrNotExist) {
		return nil, kerrors.ErrVaultNotInitialized
	}

	config, err := configs.LoadVaultConfig()
	if err != nil {
		return nil, fmt.Errorf("loading vault config: %w", err)
	}
	settings.VaultUUID = config.Vault.UUID
	if config.Vault.Name != "" {
		settings.VaultName = config.Vault.Name
	}

	return &vaultEnv{
		settings:  settings,
		config:    config,
		catalogue: vault.New(settings.DocumentsPath, settings.PublicKeysPath),
		ledger:    ledger.NewFileLedger(settings.LedgerPath),
	}, nil
}

// openStore opens the vault's blob store.
func (v *vaultEnv) openStore() (blobstore.Store, error) {
	return blobstore.OpenBadger(blobstore.Config{
		Path:             v.config.Storage.ResolveBlobPath(v.settings.VaultPath),
		MinimumFreeSpace: v.config.Storage.MinimumFreeSpaceGB,
		Logger:           Logger,
	})
}

// retry runs fn with the vault's storage retry settings.
func (v *vaultEnv) retry(ctx context.Context, fn func(context.Context) error) error {
	backoff := time.Duration(v.config.Storage.RetryBackoffMS) * time.Millisecond
	return blobstore.Retry(ctx, v.config.Storage.RetryAttempts, backoff, fn)
}

// record appends e to the ledger. Failures are logged, never returned.
func (v *vaultEnv) record(e ledger.Event) {
	if err := v.ledger.Record(e); err != nil {
		Logger.WithError(err).WithField("op", e.Operation).Warn("failed to record ledger event")
	}
}

// privateKey loads the private key of account for this vault.
func (v *vaultEnv) privateKey(account string, src KeySource) (crypto.PrivateKey, error) {
	data := src.Data
	if len(data) == 0 {
		path := configs.UserKeyPath(v.settings.VaultUUID, account)
		var err error
		data, err = os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return crypto.PrivateKey{}, fmt.Errorf("%w: %s", kerrors.ErrPrivateKeyNotFound, path)
		}
		if err != nil {
			return crypto.PrivateKey{}, fmt.Errorf("reading private key: %w", err)
		}
	}

	var passphrase []byte
	if crypto.IsSealedPrivateKey(data) {
		if src.Passphrase == nil {
			return crypto.PrivateKey{}, kerrors.ErrWrongPassphrase
		}
		p, err := src.Passphrase()
		if err != nil {
			return crypto.PrivateKey{}, err
		}
		passphrase = p
		defer crypto.Wipe(passphrase)
	}

	return crypto.DecodePrivateKey(data, passphrase)
}

// connectedAccount returns the account of w, connecting it from the
// persisted user config when w is nil or disconnected.
func connectedAccount(ctx context.Context, w *wallet.Session) (*wallet.Session, string, error) {
	if w == nil {
		w = wallet.NewSession(wallet.ConfigProvider{RequireConnected: true})
	}
	if account := w.CurrentAccount(); account != "" {
		return w, account, nil
	}
	if err := w.Connect(ctx); err != nil {
		return nil, "", err
	}
	return w, w.CurrentAccount(), nil
}
