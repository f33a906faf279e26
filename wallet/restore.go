package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/crypto"
	"github.com/ecashkit/wallet/mint"
	"github.com/ecashkit/wallet/wallet/storage"
	"github.com/tyler-smith/go-bip39"
)

const (
	restoreBatchSize       = 100
	restoreEmptyBatchLimit = 3
)

// Restore rebuilds a wallet's proof set from mnemonic alone: for each
// of the mint's hex-id keysets, it walks sequential counters in
// batches of restoreBatchSize, asking the mint to unblind whatever
// signatures it still recognizes, then uses NUT-07 to keep only the
// ones still unspent. It stops a keyset after restoreEmptyBatchLimit
// consecutive batches come back with no signatures at all.
func Restore(transport mint.Transport, store storage.Store, mintURL string, mnemonic string) (cashu.Proofs, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, cashu.ErrInvalidMnemonic
	}

	w, err := NewDeterministic(transport, store, mintURL, cashu.Sat, mnemonic)
	if err != nil {
		return nil, err
	}

	info, err := transport.GetInfo()
	if err != nil {
		return nil, fmt.Errorf("wallet: getting mint info: %w", err)
	}
	if !info.NutSupport(7) || !info.NutSupport(9) {
		return nil, fmt.Errorf("wallet: mint does not support restore")
	}

	keysetsRes, err := transport.GetKeysets()
	if err != nil {
		return nil, fmt.Errorf("wallet: listing keysets: %w", err)
	}

	var restored cashu.Proofs
	for _, ks := range keysetsRes.Keysets {
		if ks.Unit != cashu.Sat.String() {
			continue
		}
		if _, err := hex.DecodeString(ks.Id); err != nil {
			continue
		}

		keyset, err := w.fetchKeyset(ks.Id, ks.Unit, ks.Active, ks.InputFeePpk)
		if err != nil {
			return nil, err
		}

		proofs, err := w.restoreKeyset(keyset.Id, keyset.Keys)
		if err != nil {
			return nil, err
		}
		restored = append(restored, proofs...)
	}

	if err := store.SaveProofs(restored); err != nil {
		return nil, fmt.Errorf("wallet: saving restored proofs: %w", err)
	}

	return restored, nil
}

func (w *Wallet) restoreKeyset(keysetId string, keys crypto.PublicKeys) (cashu.Proofs, error) {
	keysetPath, err := w.keysetPath(keysetId)
	if err != nil {
		return nil, err
	}
	if keysetPath == nil {
		return nil, cashu.ErrNoSeed
	}

	var restored cashu.Proofs
	var counter uint32
	emptyBatches := 0

	for emptyBatches < restoreEmptyBatchLimit {
		amounts := make([]uint64, restoreBatchSize)
		for i := range amounts {
			amounts[i] = 1 // amount is irrelevant for restore probing; mint ignores it
		}

		outputs, nextCounter, err := planOutputs(amounts, keysetId, keysetPath, counter)
		if err != nil {
			return nil, err
		}

		res, err := w.transport.PostRestore(mint.PostRestoreRequest{Outputs: outputsToBlindedMessages(outputs)})
		if err != nil {
			return nil, fmt.Errorf("wallet: restoring keyset %s: %w", keysetId, err)
		}

		counter = nextCounter

		if len(res.Signatures) == 0 {
			emptyBatches++
			continue
		}
		emptyBatches = 0

		matched := matchOutputs(outputs, res.Outputs)
		proofs, err := unblindSignatures(matched, res.Signatures, keys)
		if err != nil {
			return nil, err
		}

		ys := make([]string, len(proofs))
		bySecret := make(map[string]cashu.Proof, len(proofs))
		for i, p := range proofs {
			y := crypto.HashToCurve([]byte(p.Secret))
			yHex := cashu.EncodePoint(y)
			ys[i] = yHex
			bySecret[yHex] = p
		}

		stateRes, err := w.transport.PostCheckState(mint.PostCheckStateRequest{Ys: ys})
		if err != nil {
			return nil, fmt.Errorf("wallet: checking restored proof states: %w", err)
		}

		for _, state := range stateRes.States {
			if state.State == mint.Unspent {
				restored = append(restored, bySecret[state.Y])
			}
		}
	}

	if err := w.store.IncrementCounter(keysetId, counter); err != nil {
		return nil, fmt.Errorf("wallet: saving restored counter: %w", err)
	}

	return restored, nil
}

// matchOutputs filters sent to the subset the mint actually returned
// signatures for, in the order the mint echoed them back in returned —
// a mint may skip outputs it never signed.
func matchOutputs(sent []plannedOutput, returned cashu.BlindedMessages) []plannedOutput {
	bySecret := make(map[string]plannedOutput, len(sent))
	for _, o := range sent {
		bySecret[o.Message.B_] = o
	}

	matched := make([]plannedOutput, 0, len(returned))
	for _, r := range returned {
		if o, ok := bySecret[r.B_]; ok {
			matched = append(matched, o)
		}
	}
	return matched
}
