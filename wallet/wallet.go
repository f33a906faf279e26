// Package wallet implements the client-side half of a Chaumian ecash
// wallet: it plans blinded outputs, drives a mint through the
// mint.Transport interface, and keeps spendable proofs in a
// storage.Store.
package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/cashu/nuts/nut13"
	"github.com/ecashkit/wallet/mint"
	"github.com/ecashkit/wallet/wallet/storage"
	"github.com/tyler-smith/go-bip39"
)

// Wallet talks to one mint over an injected Transport and persists
// its proofs, keysets and seed through a Store.
type Wallet struct {
	transport mint.Transport
	store     storage.Store
	mintURL   string
	unit      cashu.Unit

	seed      []byte
	masterKey *hdkeychain.ExtendedKey
}

// New opens a wallet against mintURL using transport for every mint
// call and store for persistence. If store already has a seed saved
// (from a prior Restore or NewDeterministic call), the wallet resumes
// deterministic secret derivation automatically.
func New(transport mint.Transport, store storage.Store, mintURL string, unit cashu.Unit) (*Wallet, error) {
	w := &Wallet{transport: transport, store: store, mintURL: mintURL, unit: unit}

	if seed := store.GetSeed(); len(seed) > 0 {
		if err := w.useSeed(seed); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// NewDeterministic is like New but seeds the wallet from mnemonic
// immediately, persisting the seed so future New calls resume it.
// mnemonic must already be a valid BIP-39 phrase.
func NewDeterministic(transport mint.Transport, store storage.Store, mintURL string, unit cashu.Unit, mnemonic string) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, cashu.ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(mnemonic, "")
	if err := store.SaveSeed(mnemonic, seed); err != nil {
		return nil, fmt.Errorf("wallet: saving seed: %w", err)
	}

	w := &Wallet{transport: transport, store: store, mintURL: mintURL, unit: unit}
	if err := w.useSeed(seed); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Wallet) useSeed(seed []byte) error {
	masterKey, err := nut13.MasterKeyFromSeed(seed)
	if err != nil {
		return fmt.Errorf("wallet: deriving master key: %w", err)
	}
	w.seed = seed
	w.masterKey = masterKey
	return nil
}

// Deterministic reports whether the wallet derives secrets from a
// BIP-39 seed rather than sampling them at random.
func (w *Wallet) Deterministic() bool {
	return w.masterKey != nil
}

// Balance sums every proof currently stored, regardless of keyset.
func (w *Wallet) Balance() uint64 {
	return w.store.GetProofs().Amount()
}

// MintURL returns the mint this wallet is bound to.
func (w *Wallet) MintURL() string {
	return w.mintURL
}

// Mnemonic returns the BIP-39 phrase backing deterministic secret
// derivation, or "" if the wallet has no seed.
func (w *Wallet) Mnemonic() string {
	return w.store.GetMnemonic()
}

// keysetPath returns the NUT-13 derivation ancestor for keysetId, or
// nil if the wallet has no seed (outputs for that keyset are then
// planned with random secrets).
func (w *Wallet) keysetPath(keysetId string) (*hdkeychain.ExtendedKey, error) {
	if w.masterKey == nil {
		return nil, nil
	}
	return nut13.DeriveKeysetPath(w.masterKey, keysetId)
}

// nextCounter allocates n sequential counter values for keysetId and
// persists the advance immediately, so a crash mid-operation never
// reuses a counter value already shown to a mint.
func (w *Wallet) nextCounter(keysetId string, n uint32) (uint32, error) {
	start := w.store.GetCounter(keysetId)
	if err := w.store.IncrementCounter(keysetId, n); err != nil {
		return 0, fmt.Errorf("wallet: advancing counter: %w", err)
	}
	return start, nil
}
