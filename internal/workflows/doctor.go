package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PolarWolf314/docuvault/internal/configs"
	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/wallet"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Group      string      `json:"group"`
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult    `json:"checks"`
	Documents   []DocumentHealth `json:"documents,omitempty"`
	Summary     DoctorSummary    `json:"summary"`
	Suggestions []string         `json:"suggestions,omitempty"`
}

// DocumentHealth is the blob store state of one document.
type DocumentHealth struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Recipients int    `json:"recipients"`
	Size       int64  `json:"size"`
	Intact     bool   `json:"intact"`
	Problem    string `json:"problem,omitempty"`
}

// Check groups, in report order.
const (
	GroupSetup     = "Setup"
	GroupKeys      = "Keys"
	GroupDocuments = "Documents"
)

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	// Wallet supplies the account to check keys for. If nil, the persisted
	// wallet session is used.
	Wallet *wallet.Session
}

// doctorEnv is what the checks share. Fields stay nil when an earlier
// step failed.
type doctorEnv struct {
	ctx      context.Context
	vault    *vaultEnv
	vaultErr error
	account  string

	documents []DocumentHealth
}

// Doctor runs health checks on the vault.
//
// The doctor workflow checks:
//   - Vault configuration validity
//   - User configuration validity
//   - Wallet connection
//   - Private key existence and permissions
//   - Published public key matches the private key
//   - Manifests parse and every recipient has a published key
//   - Every document's ciphertext is present and intact in the blob store
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	env := &doctorEnv{ctx: ctx}
	env.vault, env.vaultErr = loadVault()
	if _, account, err := connectedAccount(ctx, opts.Wallet); err == nil {
		env.account = account
	}

	groups := []struct {
		name   string
		checks []func(*doctorEnv) CheckResult
	}{
		{GroupSetup, []func(*doctorEnv) CheckResult{checkVaultConfig, checkUserConfig, checkWallet}},
		{GroupKeys, []func(*doctorEnv) CheckResult{checkPrivateKeyExists, checkPrivateKeyPermissions, checkPublicKeyMatches}},
		{GroupDocuments, []func(*doctorEnv) CheckResult{checkManifests, checkBlobs}},
	}

	var results []CheckResult
	for _, g := range groups {
		for _, check := range g.checks {
			r := check(env)
			r.Group = g.name
			results = append(results, r)
		}
	}

	summary := calculateDoctorSummary(results)

	// Collect suggestions (deduplicated).
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Documents:   env.documents,
		Summary:     summary,
		Suggestions: suggestions,
	}, nil
}

func vaultMissing(name string, err error) CheckResult {
	if errors.Is(err, kerrors.ErrVaultNotInitialized) {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "Docuvault vault not found",
			Suggestion: "Run 'docuvault vault init' to create a vault",
		}
	}
	return CheckResult{
		Name:       name,
		Status:     CheckError,
		Message:    fmt.Sprintf("Failed to load vault: %v", err),
		Suggestion: "Check .docuvault/config.toml for syntax errors or unknown keys",
	}
}

func checkVaultConfig(env *doctorEnv) CheckResult {
	const name = "Vault configuration"
	if env.vaultErr != nil {
		return vaultMissing(name, env.vaultErr)
	}
	if env.vault.config.Vault.UUID == "" {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "Vault UUID is missing from config",
			Suggestion: "Restore .docuvault/config.toml or re-create the vault",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "Vault configuration valid"}
}

func checkUserConfig(env *doctorEnv) CheckResult {
	const name = "User configuration"
	configPath := filepath.Join(configs.UserDocuvaultSettings.UserConfigsPath, "config.toml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "User config.toml not found",
			Suggestion: "Run 'docuvault wallet connect' to create user configuration",
		}
	}

	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to parse user config: %v", err),
			Suggestion: "Check the user config.toml file for syntax errors",
		}
	}
	if userConfig.User.UUID == "" {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    "User UUID is missing from config",
			Suggestion: "Run 'docuvault wallet connect' to generate a user UUID",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "User configuration valid"}
}

func checkWallet(env *doctorEnv) CheckResult {
	const name = "Wallet connection"
	if env.account == "" {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "No wallet account connected",
			Suggestion: "Run 'docuvault wallet connect <account>'",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: fmt.Sprintf("Connected as %s", env.account)}
}

func (env *doctorEnv) privateKeyPath() (string, *CheckResult) {
	switch {
	case env.vaultErr != nil:
		r := vaultMissing("", env.vaultErr)
		return "", &r
	case env.account == "":
		return "", &CheckResult{
			Status:     CheckError,
			Message:    "Cannot locate private key: no wallet account connected",
			Suggestion: "Run 'docuvault wallet connect <account>'",
		}
	}
	return configs.UserKeyPath(env.vault.settings.VaultUUID, env.account), nil
}

func checkPrivateKeyExists(env *doctorEnv) CheckResult {
	const name = "Private key exists"
	path, fail := env.privateKeyPath()
	if fail != nil {
		fail.Name = name
		return *fail
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "Private key not found for this vault",
			Suggestion: "Run 'docuvault vault keys' to create your keys",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "Private key exists for this vault"}
}

func checkPrivateKeyPermissions(env *doctorEnv) CheckResult {
	const name = "Private key permissions"
	path, fail := env.privateKeyPath()
	if fail != nil {
		fail.Name = name
		return *fail
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "Private key not found (skipping permissions check)",
			Suggestion: "Run 'docuvault vault keys' to create your keys",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to stat private key: %v", err),
			Suggestion: "Check that the private key file is accessible",
		}
	}

	// Check permissions (should be 0600).
	if mode := info.Mode().Perm(); mode != 0600 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Private key has insecure permissions (%04o)", mode),
			Suggestion: fmt.Sprintf("Run 'chmod 600 %s' to fix permissions", path),
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "Private key has correct permissions (0600)"}
}

func checkPublicKeyMatches(env *doctorEnv) CheckResult {
	const name = "Public key published"
	path, fail := env.privateKeyPath()
	if fail != nil {
		fail.Name = name
		return *fail
	}

	pub, err := env.vault.catalogue.LoadPublicKey(env.account)
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("No public key published for %s", env.account),
			Suggestion: "Run 'docuvault vault keys' to create your keys",
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return CheckResult{Name: name, Status: CheckWarning, Message: "Public key published; private key unreadable, match not checked"}
	}
	if crypto.IsSealedPrivateKey(data) {
		return CheckResult{Name: name, Status: CheckPass, Message: "Public key published; private key is sealed, match not checked"}
	}

	priv, err := crypto.DecodePrivateKey(data, nil)
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Private key is malformed: %v", err),
			Suggestion: "Run 'docuvault vault keys --force' to replace your keys",
		}
	}
	derived, err := crypto.PublicKeyOf(priv)
	crypto.Wipe(priv[:])
	if err != nil || derived != pub {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    "Published public key does not match your private key",
			Suggestion: "Run 'docuvault vault keys --force' to replace your keys",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: "Public key matches private key"}
}

func checkManifests(env *doctorEnv) CheckResult {
	const name = "Document manifests"
	if env.vaultErr != nil {
		return vaultMissing(name, env.vaultErr)
	}

	docs, err := env.vault.catalogue.ListDocuments("")
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to read manifests: %v", err),
			Suggestion: "Check .docuvault/documents for damaged manifests",
		}
	}

	var orphans []string
	for _, doc := range docs {
		for _, account := range doc.Recipients() {
			if _, err := env.vault.catalogue.LoadPublicKey(account); err != nil {
				orphans = append(orphans, fmt.Sprintf("%s (%s)", account, doc.Name))
			}
		}
	}
	if len(orphans) > 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Recipients without a published key: %s", strings.Join(orphans, ", ")),
			Suggestion: "Register the missing public keys or revoke their access",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: fmt.Sprintf("%d manifests valid", len(docs))}
}

func checkBlobs(env *doctorEnv) CheckResult {
	const name = "Blob store"
	if env.vaultErr != nil {
		return vaultMissing(name, env.vaultErr)
	}

	docs, err := env.vault.catalogue.ListDocuments("")
	if err != nil {
		return CheckResult{Name: name, Status: CheckWarning, Message: "Manifests unreadable (skipping blob check)"}
	}

	store, err := env.vault.openStore()
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to open blob store: %v", err),
			Suggestion: "Check storage.blob_path and free disk space",
		}
	}
	defer store.Close()

	var broken []string
	for _, doc := range docs {
		h := DocumentHealth{
			ID:         doc.ID,
			Name:       doc.Name,
			Recipients: len(doc.Access),
			Size:       doc.Size,
			Intact:     true,
		}
		if _, err := store.Download(env.ctx, doc.ID); err != nil {
			h.Intact = false
			h.Problem = blobProblem(err)
			broken = append(broken, doc.Name)
		}
		env.documents = append(env.documents, h)
	}
	if len(broken) > 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Missing or corrupt ciphertext: %s", strings.Join(broken, ", ")),
			Suggestion: "Re-upload the affected documents",
		}
	}
	return CheckResult{Name: name, Status: CheckPass, Message: fmt.Sprintf("%d documents intact", len(docs))}
}

func blobProblem(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNotFound):
		return "ciphertext missing"
	case errors.Is(err, kerrors.ErrIntegrity):
		return "ciphertext does not match its identifier"
	default:
		return err.Error()
	}
}

// calculateDoctorSummary calculates the counts of checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
