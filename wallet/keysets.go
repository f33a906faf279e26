package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/ecashkit/wallet/crypto"
)

// activeKeyset returns the mint's current active keyset for the
// wallet's unit, fetching and caching it in the store on first use or
// whenever the mint's advertised active keyset id has changed.
func (w *Wallet) activeKeyset() (*crypto.Keyset, error) {
	keysetsRes, err := w.transport.GetKeysets()
	if err != nil {
		return nil, fmt.Errorf("wallet: listing keysets: %w", err)
	}

	for _, ks := range keysetsRes.Keysets {
		if !ks.Active || ks.Unit != w.unit.String() {
			continue
		}
		if _, err := hex.DecodeString(ks.Id); err != nil {
			continue // ignore keysets with non-hex ids, e.g. legacy ones
		}

		if cached := w.store.GetKeyset(ks.Id); cached != nil {
			return cached, nil
		}

		keyset, err := w.fetchKeyset(ks.Id, ks.Unit, ks.Active, ks.InputFeePpk)
		if err != nil {
			return nil, err
		}
		return keyset, nil
	}

	return nil, fmt.Errorf("wallet: mint has no active keyset for unit %s", w.unit)
}

// keysetById returns the keys for keysetId, fetching from the mint and
// caching if not already stored. Needed for swap/melt/restore
// operations where the mint returns a specific keyset id to pay back
// into, not necessarily the currently active one.
func (w *Wallet) keysetById(keysetId string) (*crypto.Keyset, error) {
	if cached := w.store.GetKeyset(keysetId); cached != nil {
		return cached, nil
	}
	return w.fetchKeyset(keysetId, w.unit.String(), false, 0)
}

// keysetFor resolves the keys needed to unblind a signature tagged with
// id, reusing planned when it already matches and otherwise refreshing
// the cache via keysetById — the mint may have rotated its active
// keyset between when outputs were planned and when it signed them.
func (w *Wallet) keysetFor(planned *crypto.Keyset, id string) (*crypto.Keyset, error) {
	if planned != nil && planned.Id == id {
		return planned, nil
	}
	return w.keysetById(id)
}

func (w *Wallet) fetchKeyset(id, unit string, active bool, inputFeePpk uint) (*crypto.Keyset, error) {
	keysRes, err := w.transport.GetKeysetKeys(id)
	if err != nil {
		return nil, fmt.Errorf("wallet: fetching keyset %s: %w", id, err)
	}
	if len(keysRes.Keysets) == 0 {
		return nil, fmt.Errorf("wallet: mint returned no keys for keyset %s", id)
	}

	entry := keysRes.Keysets[0]
	derived := crypto.DeriveKeysetId(crypto.MapPublicKeys(entry.Keys))
	if derived != id {
		return nil, fmt.Errorf("wallet: keyset %s failed id validation (derived %s)", id, derived)
	}

	keyset := &crypto.Keyset{Id: id, Unit: unit, Active: active, InputFeePpk: inputFeePpk, Keys: entry.Keys}
	if err := w.store.SaveKeyset(keyset); err != nil {
		return nil, fmt.Errorf("wallet: caching keyset %s: %w", id, err)
	}
	return keyset, nil
}
