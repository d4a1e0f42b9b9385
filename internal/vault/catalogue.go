package vault

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PolarWolf314/docuvault/internal/configs"
	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/utils"
)

const (
	manifestExt  = ".toml"
	publicKeyExt = ".pub"
)

// Document is the manifest of a single uploaded document.
type Document struct {
	ID          string    `toml:"id"`
	Name        string    `toml:"name"`
	Owner       string    `toml:"owner"`
	IV          string    `toml:"iv"`
	ContentType string    `toml:"content_type,omitempty"`
	CreatedAt   time.Time `toml:"created_at"`
	Size        int64     `toml:"size"`

	// Access maps an account to its base64 wrapped document key.
	Access map[string]string `toml:"access"`
}

// SetIV stores iv on the manifest.
func (d *Document) SetIV(iv crypto.IV) {
	d.IV = base64.StdEncoding.EncodeToString(iv[:])
}

// NonceIV decodes the stored GCM nonce.
func (d *Document) NonceIV() (crypto.IV, error) {
	raw, err := base64.StdEncoding.DecodeString(d.IV)
	if err != nil {
		return crypto.IV{}, fmt.Errorf("%w: iv is not base64: %v", kerrors.ErrInvalidKey, err)
	}
	return crypto.IVFromBytes(raw)
}

// WrappedKeyFor returns the document key wrapped for account.
func (d *Document) WrappedKeyFor(account string) (crypto.WrappedKey, error) {
	enc, ok := d.Access[account]
	if !ok {
		return crypto.WrappedKey{}, kerrors.ErrNoAccess
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return crypto.WrappedKey{}, fmt.Errorf("%w: wrapped key is not base64: %v", kerrors.ErrUnwrap, err)
	}
	return crypto.ParseWrappedKey(raw)
}

// Recipients returns the accounts holding a wrapped key, sorted.
func (d *Document) Recipients() []string {
	accounts := make([]string, 0, len(d.Access))
	for account := range d.Access {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

// SetWrappedKey stores w as account's key for the document.
func (d *Document) SetWrappedKey(account string, w crypto.WrappedKey) error {
	if !utils.IsValidAccount(account) {
		return fmt.Errorf("%w: %q", kerrors.ErrInvalidAccount, account)
	}
	if d.Access == nil {
		d.Access = make(map[string]string)
	}
	d.Access[account] = base64.StdEncoding.EncodeToString(w.Bytes())
	return nil
}

// Catalogue stores manifests and public keys under a vault directory.
type Catalogue struct {
	DocumentsPath  string
	PublicKeysPath string
}

// New returns a catalogue rooted at the given directories.
func New(documentsPath, publicKeysPath string) *Catalogue {
	return &Catalogue{DocumentsPath: documentsPath, PublicKeysPath: publicKeysPath}
}

// FromSettings returns the catalogue of the current vault.
func FromSettings() (*Catalogue, error) {
	s := configs.VaultDocuvaultSettings
	if s == nil || s.VaultPath == "" {
		return nil, kerrors.ErrVaultNotInitialized
	}
	return New(s.DocumentsPath, s.PublicKeysPath), nil
}

func (c *Catalogue) manifestPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: invalid document id %q", kerrors.ErrDocumentNotFound, id)
	}
	return filepath.Join(c.DocumentsPath, id+manifestExt), nil
}

func (c *Catalogue) publicKeyPath(account string) (string, error) {
	if !utils.IsValidAccount(account) {
		return "", fmt.Errorf("%w: %q", kerrors.ErrInvalidAccount, account)
	}
	return filepath.Join(c.PublicKeysPath, account+publicKeyExt), nil
}

// SaveDocument writes the manifest for doc, replacing any previous one.
func (c *Catalogue) SaveDocument(doc *Document) error {
	path, err := c.manifestPath(doc.ID)
	if err != nil {
		return err
	}
	if err := configs.SaveTOML(path, doc); err != nil {
		return fmt.Errorf("failed to save manifest for %s: %w", doc.ID, err)
	}
	return nil
}

// LoadDocument reads the manifest for id.
func (c *Catalogue) LoadDocument(id string) (*Document, error) {
	path, err := c.manifestPath(id)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrDocumentNotFound, id)
	}

	doc := &Document{}
	if err := configs.LoadTOML(path, doc); err != nil {
		return nil, fmt.Errorf("failed to load manifest for %s: %w", id, err)
	}
	if doc.Access == nil {
		doc.Access = make(map[string]string)
	}
	return doc, nil
}

// ListDocuments returns the documents owned by owner, oldest first. An
// empty owner lists every document in the vault.
func (c *Catalogue) ListDocuments(owner string) ([]*Document, error) {
	return c.list(func(d *Document) bool {
		return owner == "" || d.Owner == owner
	})
}

// ListAccessible returns the documents account holds a key for.
func (c *Catalogue) ListAccessible(account string) ([]*Document, error) {
	return c.list(func(d *Document) bool {
		_, ok := d.Access[account]
		return ok
	})
}

func (c *Catalogue) list(keep func(*Document) bool) ([]*Document, error) {
	entries, err := os.ReadDir(c.DocumentsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}

	var docs []*Document
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != manifestExt {
			continue
		}
		doc, err := c.LoadDocument(strings.TrimSuffix(entry.Name(), manifestExt))
		if err != nil {
			return nil, err
		}
		if keep(doc) {
			docs = append(docs, doc)
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})
	return docs, nil
}

// GrantAccess stores wrapped as recipient's key for document id. Only the
// owner may grant; granting again replaces the previous key.
func (c *Catalogue) GrantAccess(id, caller, recipient string, wrapped crypto.WrappedKey) (*Document, error) {
	doc, err := c.LoadDocument(id)
	if err != nil {
		return nil, err
	}
	if doc.Owner != caller {
		return nil, kerrors.ErrNotOwner
	}

	if err := doc.SetWrappedKey(recipient, wrapped); err != nil {
		return nil, err
	}
	if err := c.SaveDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// RevokeAccess removes recipient's key for document id.
func (c *Catalogue) RevokeAccess(id, caller, recipient string) (*Document, error) {
	doc, err := c.LoadDocument(id)
	if err != nil {
		return nil, err
	}
	if doc.Owner != caller {
		return nil, kerrors.ErrNotOwner
	}
	if recipient == doc.Owner {
		return nil, kerrors.ErrSelfRevoke
	}
	if _, ok := doc.Access[recipient]; !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNoAccess, recipient)
	}

	delete(doc.Access, recipient)
	if err := c.SaveDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// HasAccess reports whether account holds a key for document id.
func (c *Catalogue) HasAccess(id, account string) (bool, error) {
	doc, err := c.LoadDocument(id)
	if err != nil {
		return false, err
	}
	_, ok := doc.Access[account]
	return ok, nil
}

// SavePublicKey publishes pub for account. An existing key is only
// replaced when overwrite is set.
func (c *Catalogue) SavePublicKey(account string, pub crypto.PublicKey, overwrite bool) (string, error) {
	path, err := c.publicKeyPath(account)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return "", fmt.Errorf("%w: %s", kerrors.ErrPublicKeyExists, account)
	}
	if err := os.MkdirAll(c.PublicKeysPath, 0700); err != nil {
		return "", fmt.Errorf("failed to create public keys directory: %w", err)
	}
	// #nosec G306 -- public keys are shared with the vault.
	if err := os.WriteFile(path, crypto.EncodePublicKey(pub), 0644); err != nil {
		return "", fmt.Errorf("failed to write public key for %s: %w", account, err)
	}
	return path, nil
}

// LoadPublicKey reads the published key for account.
func (c *Catalogue) LoadPublicKey(account string) (crypto.PublicKey, error) {
	path, err := c.publicKeyPath(account)
	if err != nil {
		return crypto.PublicKey{}, err
	}
	pub, err := crypto.LoadPublicKey(path)
	if errors.Is(err, os.ErrNotExist) {
		return crypto.PublicKey{}, fmt.Errorf("%w: %s", kerrors.ErrPublicKeyNotFound, account)
	}
	return pub, err
}

// PublicKeyAccounts lists the accounts with a published key, sorted.
func (c *Catalogue) PublicKeyAccounts() ([]string, error) {
	entries, err := os.ReadDir(c.PublicKeysPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read public keys directory: %w", err)
	}

	var accounts []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != publicKeyExt {
			continue
		}
		accounts = append(accounts, strings.TrimSuffix(entry.Name(), publicKeyExt))
	}
	sort.Strings(accounts)
	return accounts, nil
}
