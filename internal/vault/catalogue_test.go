package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PolarWolf314/docuvault/internal/configs"
	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
)

const (
	owner = "0xowner"
	alice = "alice@example.com"
)

func newCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "documents"), filepath.Join(dir, "public_keys"))
}

func newWrapped(t *testing.T) (crypto.WrappedKey, crypto.Key, crypto.RecipientKeyPair) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	kp, err := crypto.GenerateRecipientKeyPair()
	if err != nil {
		t.Fatalf("GenerateRecipientKeyPair failed: %v", err)
	}
	w, err := crypto.WrapKeyForRecipient(key, kp.Public)
	if err != nil {
		t.Fatalf("WrapKeyForRecipient failed: %v", err)
	}
	return w, key, kp
}

func saveOwnedDocument(t *testing.T, c *Catalogue, id string, created time.Time) *Document {
	t.Helper()
	w, _, _ := newWrapped(t)
	doc := &Document{ID: id, Name: id + ".txt", Owner: owner, CreatedAt: created, Size: 11}
	doc.SetIV(crypto.IV{1, 2, 3})
	if err := doc.SetWrappedKey(owner, w); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	return doc
}

func TestSaveAndLoadDocument(t *testing.T) {
	c := newCatalogue(t)
	w, key, kp := newWrapped(t)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := &Document{ID: "bafkreiabc", Name: "report.pdf", Owner: owner, ContentType: "pdf", CreatedAt: created, Size: 42}
	doc.SetIV(crypto.IV{9, 9, 9})
	if err := doc.SetWrappedKey(owner, w); err != nil {
		t.Fatal(err)
	}

	if err := c.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	loaded, err := c.LoadDocument("bafkreiabc")
	if err != nil {
		t.Fatalf("LoadDocument failed: %v", err)
	}
	if loaded.Name != "report.pdf" || loaded.Owner != owner || loaded.Size != 42 || loaded.ContentType != "pdf" {
		t.Errorf("unexpected manifest: %+v", loaded)
	}
	if !loaded.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, created)
	}

	iv, err := loaded.NonceIV()
	if err != nil {
		t.Fatalf("NonceIV failed: %v", err)
	}
	if iv != (crypto.IV{9, 9, 9}) {
		t.Errorf("NonceIV = %v", iv)
	}

	gotWrapped, err := loaded.WrappedKeyFor(owner)
	if err != nil {
		t.Fatalf("WrappedKeyFor failed: %v", err)
	}
	unwrapped, err := crypto.UnwrapKey(gotWrapped, kp.Private)
	if err != nil {
		t.Fatalf("UnwrapKey failed: %v", err)
	}
	if unwrapped != key {
		t.Error("unwrapped key does not match the original")
	}
}

func TestLoadDocument_NotFound(t *testing.T) {
	c := newCatalogue(t)

	_, err := c.LoadDocument("missing")
	if !errors.Is(err, kerrors.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestLoadDocument_RejectsPathIDs(t *testing.T) {
	c := newCatalogue(t)

	for _, id := range []string{"", "../config", "a/b", `a\b`} {
		if _, err := c.LoadDocument(id); !errors.Is(err, kerrors.ErrDocumentNotFound) {
			t.Errorf("LoadDocument(%q): expected ErrDocumentNotFound, got %v", id, err)
		}
	}
}

func TestLoadDocument_UnknownKey(t *testing.T) {
	c := newCatalogue(t)
	if err := os.MkdirAll(c.DocumentsPath, 0700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(c.DocumentsPath, "odd.toml")
	if err := os.WriteFile(path, []byte("id = \"odd\"\nownr = \"typo\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := c.LoadDocument("odd")
	var unknown *configs.UnknownKeysError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownKeysError, got %v", err)
	}
}

func TestWrappedKeyFor_NoAccess(t *testing.T) {
	doc := &Document{Access: map[string]string{}}

	if _, err := doc.WrappedKeyFor(alice); !errors.Is(err, kerrors.ErrNoAccess) {
		t.Errorf("expected ErrNoAccess, got %v", err)
	}
}

func TestListDocuments(t *testing.T) {
	c := newCatalogue(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	saveOwnedDocument(t, c, "second", base.Add(time.Hour))
	saveOwnedDocument(t, c, "first", base)

	other := &Document{ID: "theirs", Owner: alice, CreatedAt: base}
	if err := c.SaveDocument(other); err != nil {
		t.Fatal(err)
	}

	docs, err := c.ListDocuments(owner)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "first" || docs[1].ID != "second" {
		t.Fatalf("unexpected documents: %v", ids(docs))
	}

	all, err := c.ListDocuments("")
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 documents, got %v", ids(all))
	}
}

func TestListDocuments_EmptyVault(t *testing.T) {
	c := newCatalogue(t)

	docs, err := c.ListDocuments(owner)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %v", ids(docs))
	}
}

func TestGrantAndRevokeAccess(t *testing.T) {
	c := newCatalogue(t)
	saveOwnedDocument(t, c, "doc", time.Now().UTC())
	w, _, _ := newWrapped(t)

	if _, err := c.GrantAccess("doc", owner, alice, w); err != nil {
		t.Fatalf("GrantAccess failed: %v", err)
	}
	ok, err := c.HasAccess("doc", alice)
	if err != nil || !ok {
		t.Fatalf("HasAccess = %v, %v; want true", ok, err)
	}

	accessible, err := c.ListAccessible(alice)
	if err != nil || len(accessible) != 1 {
		t.Fatalf("ListAccessible = %v, %v", ids(accessible), err)
	}

	doc, err := c.RevokeAccess("doc", owner, alice)
	if err != nil {
		t.Fatalf("RevokeAccess failed: %v", err)
	}
	if got := doc.Recipients(); len(got) != 1 || got[0] != owner {
		t.Errorf("Recipients = %v, want [%s]", got, owner)
	}
	if ok, _ := c.HasAccess("doc", alice); ok {
		t.Error("expected access to be revoked")
	}
}

func TestGrantAccess_OnlyOwner(t *testing.T) {
	c := newCatalogue(t)
	saveOwnedDocument(t, c, "doc", time.Now().UTC())
	w, _, _ := newWrapped(t)

	if _, err := c.GrantAccess("doc", alice, alice, w); !errors.Is(err, kerrors.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if _, err := c.RevokeAccess("doc", alice, owner); !errors.Is(err, kerrors.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestGrantAccess_InvalidRecipient(t *testing.T) {
	c := newCatalogue(t)
	saveOwnedDocument(t, c, "doc", time.Now().UTC())
	w, _, _ := newWrapped(t)

	if _, err := c.GrantAccess("doc", owner, "../evil", w); !errors.Is(err, kerrors.ErrInvalidAccount) {
		t.Errorf("expected ErrInvalidAccount, got %v", err)
	}
}

func TestRevokeAccess_Errors(t *testing.T) {
	c := newCatalogue(t)
	saveOwnedDocument(t, c, "doc", time.Now().UTC())

	if _, err := c.RevokeAccess("doc", owner, owner); !errors.Is(err, kerrors.ErrSelfRevoke) {
		t.Errorf("expected ErrSelfRevoke, got %v", err)
	}
	if _, err := c.RevokeAccess("doc", owner, alice); !errors.Is(err, kerrors.ErrNoAccess) {
		t.Errorf("expected ErrNoAccess, got %v", err)
	}
	if _, err := c.RevokeAccess("missing", owner, alice); !errors.Is(err, kerrors.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestPublicKeys(t *testing.T) {
	c := newCatalogue(t)
	kp, err := crypto.GenerateRecipientKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	path, err := c.SavePublicKey(alice, kp.Public, false)
	if err != nil {
		t.Fatalf("SavePublicKey failed: %v", err)
	}
	if filepath.Base(path) != alice+".pub" {
		t.Errorf("unexpected path %s", path)
	}

	if _, err := c.SavePublicKey(alice, kp.Public, false); !errors.Is(err, kerrors.ErrPublicKeyExists) {
		t.Errorf("expected ErrPublicKeyExists, got %v", err)
	}
	if _, err := c.SavePublicKey(alice, kp.Public, true); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}

	pub, err := c.LoadPublicKey(alice)
	if err != nil {
		t.Fatalf("LoadPublicKey failed: %v", err)
	}
	if pub != kp.Public {
		t.Error("loaded public key does not match")
	}

	accounts, err := c.PublicKeyAccounts()
	if err != nil || len(accounts) != 1 || accounts[0] != alice {
		t.Errorf("PublicKeyAccounts = %v, %v", accounts, err)
	}
}

func TestLoadPublicKey_NotFound(t *testing.T) {
	c := newCatalogue(t)

	if _, err := c.LoadPublicKey(alice); !errors.Is(err, kerrors.ErrPublicKeyNotFound) {
		t.Errorf("expected ErrPublicKeyNotFound, got %v", err)
	}
	if _, err := c.LoadPublicKey("../x"); !errors.Is(err, kerrors.ErrInvalidAccount) {
		t.Errorf("expected ErrInvalidAccount, got %v", err)
	}
}

func TestFromSettings_OutsideVault(t *testing.T) {
	saved := configs.VaultDocuvaultSettings
	t.Cleanup(func() { configs.VaultDocuvaultSettings = saved })
	configs.VaultDocuvaultSettings = &configs.VaultSettings{}

	if _, err := FromSettings(); !errors.Is(err, kerrors.ErrVaultNotInitialized) {
		t.Errorf("expected ErrVaultNotInitialized, got %v", err)
	}

	root := t.TempDir()
	configs.SetVaultPath(root)
	c, err := FromSettings()
	if err != nil {
		t.Fatalf("FromSettings failed: %v", err)
	}
	if c.DocumentsPath != filepath.Join(root, ".docuvault", "documents") {
		t.Errorf("DocumentsPath = %s", c.DocumentsPath)
	}
}

func ids(docs []*Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
