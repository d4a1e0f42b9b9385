package workflows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PolarWolf314/docuvault/internal/configs"
	"github.com/PolarWolf314/docuvault/internal/crypto"
	kerrors "github.com/PolarWolf314/docuvault/internal/errors"
	"github.com/PolarWolf314/docuvault/internal/ledger"
	"github.com/PolarWolf314/docuvault/internal/vault"
	"github.com/PolarWolf314/docuvault/internal/viewer"
	"github.com/PolarWolf314/docuvault/internal/wallet"
)

// OpenOptions configures the open workflow.
type OpenOptions struct {
	// DocumentID is the document to view.
	DocumentID string

	// Wallet supplies the viewing account and is watched for account
	// changes. If nil, the persisted wallet session is used.
	Wallet *wallet.Session

	// Key locates the viewer's private key.
	Key KeySource

	// Presenter acquires the viewing surface. Optional.
	Presenter viewer.Presenter

	// Observer receives session notifications alongside the ledger. Optional.
	Observer viewer.Observer

	// Clock overrides the session clock, for tests.
	Clock viewer.Clock

	// CellViewport measures the viewport in terminal cells, so the
	// resize_columns threshold applies instead of devtools_threshold.
	CellViewport bool
}

// OpenResult is an open viewing session. Close must be called when done.
type OpenResult struct {
	Account  string
	Document *vault.Document
	Session  *viewer.Session

	// Monitor is the session's violation monitor. Feed it input events.
	Monitor *viewer.EventMonitor

	closeOnce sync.Once
	cleanup   []func()
}

// Close disposes the session and wipes the document key. Safe to call
// more than once.
func (r *OpenResult) Close() {
	r.closeOnce.Do(func() {
		r.Session.Dispose()
		for i := len(r.cleanup) - 1; i >= 0; i-- {
			r.cleanup[i]()
		}
	})
}

// OpenDocument fetches, unwraps and decrypts a document and returns a
// Locked viewing session for it.
//
// Every entry into secure mode downloads and decrypts the document again,
// so a deleted or tampered blob cannot be re-armed. The blob store is only
// open while a download runs, so other commands can use the vault during a
// session. The session is disposed if the wallet switches to another
// account. Viewing activity, including every failed decryption, is
// recorded to the ledger.
//
// Returns ErrNoAccess if the account holds no key for the document.
// Returns ErrCannotDisplay, wrapping ErrAuthentication or ErrIntegrity, if
// the ciphertext fails authentication or no longer matches its identifier.
// Returns ErrStorage if the blob store fails after retries.
func OpenDocument(ctx context.Context, opts OpenOptions) (*OpenResult, error) {
	v, err := loadVault()
	if err != nil {
		return nil, err
	}
	w, account, err := connectedAccount(ctx, opts.Wallet)
	if err != nil {
		return nil, err
	}

	doc, err := v.catalogue.LoadDocument(opts.DocumentID)
	if err != nil {
		return nil, err
	}
	wrapped, err := doc.WrappedKeyFor(account)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, doc.Name)
	}
	iv, err := doc.NonceIV()
	if err != nil {
		return nil, err
	}

	priv, err := v.privateKey(account, opts.Key)
	if err != nil {
		return nil, err
	}
	key, err := crypto.UnwrapKey(wrapped, priv)
	crypto.Wipe(priv[:])
	if err != nil {
		return nil, err
	}
	km := &crypto.KeyMaterial{Key: key, IV: iv}
	crypto.Wipe(key[:])

	base := ledger.Event{Account: account, DocumentID: doc.ID, DocumentName: doc.Name}
	failed := base
	fetch := func() ([]byte, error) {
		plaintext, err := fetchAndDecrypt(ctx, v, doc.ID, km)
		if errors.Is(err, kerrors.ErrCannotDisplay) {
			e := failed
			e.Operation = ledger.OpDecryptFailed
			e.Detail = err.Error()
			v.record(e)
		}
		return plaintext, err
	}

	plaintext, err := fetch()
	if err != nil {
		crypto.Wipe(km.Key[:])
		return nil, err
	}

	policy := policyFromConfig(v.config.Viewer, opts.CellViewport)
	monitor := viewer.NewEventMonitor(viewer.DefaultDetectors(policy)...)

	ledgerObserver := &ledger.SessionObserver{
		Ledger: v.ledger,
		Base:   base,
		OnError: func(err error) {
			Logger.WithError(err).Warn("failed to record viewing event")
		},
	}
	var observer viewer.Observer = ledgerObserver
	if opts.Observer != nil {
		observer = viewer.MultiObserver{ledgerObserver, opts.Observer}
	}

	sessionOpts := []viewer.Option{
		viewer.WithPolicy(policy),
		viewer.WithMonitor(monitor),
		viewer.WithObserver(observer),
		viewer.WithReverify(fetch),
		viewer.WithWatermark(viewer.Watermark{Account: account}),
	}
	if opts.Presenter != nil {
		sessionOpts = append(sessionOpts, viewer.WithPresenter(opts.Presenter))
	}
	if opts.Clock != nil {
		sessionOpts = append(sessionOpts, viewer.WithClock(opts.Clock))
	}

	session := viewer.Open(plaintext, sessionOpts...)
	failed.SessionID = session.ID()
	ledgerObserver.Base.SessionID = session.ID()
	ledgerObserver.Viewed = session.Viewed

	open := base
	open.Operation = ledger.OpViewOpen
	open.SessionID = session.ID()
	v.record(open)

	unsubscribe := w.OnChange(func(current string) {
		if current != account {
			session.Dispose()
		}
	})

	return &OpenResult{
		Account:  account,
		Document: doc,
		Session:  session,
		Monitor:  monitor,
		cleanup: []func(){
			func() { crypto.Wipe(km.Key[:]) },
			unsubscribe,
		},
	}, nil
}

// fetchAndDecrypt opens the blob store, downloads a document, closes the
// store and decrypts the document with km. The open is retried with the
// download, so a store briefly held by another command is waited for.
// Authentication and integrity failures surface as ErrCannotDisplay.
func fetchAndDecrypt(ctx context.Context, v *vaultEnv, id string, km *crypto.KeyMaterial) ([]byte, error) {
	var ciphertext []byte
	err := v.retry(ctx, func(ctx context.Context) error {
		store, err := v.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		ciphertext, err = store.Download(ctx, id)
		return err
	})
	if errors.Is(err, kerrors.ErrIntegrity) {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrCannotDisplay, err)
	}
	if err != nil {
		return nil, fmt.Errorf("downloading document: %w", err)
	}

	plaintext, err := crypto.Decrypt(crypto.Payload{Ciphertext: ciphertext}, *km)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrCannotDisplay, err)
	}
	return plaintext, nil
}

func policyFromConfig(c configs.ViewerConfig, cells bool) viewer.Policy {
	p := viewer.Policy{
		CoolDown:          time.Duration(c.CoolDownMS) * time.Millisecond,
		TerminationGrace:  time.Duration(c.TerminationGraceMS) * time.Millisecond,
		MaxViolations:     c.MaxViolations,
		DevToolsThreshold: c.DevToolsThreshold,
	}
	if cells {
		p.DevToolsThreshold = c.ResizeColumns
	}
	return p
}
