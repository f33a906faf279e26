package wallet

import (
	"fmt"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/mint"
)

// TokenError is one entry's failure inside Receive's partial-failure
// report.
type TokenError struct {
	Mint  string
	Error error
}

// ReceiveResult is Receive's outcome: amount is what actually landed
// in the wallet, Errors holds one entry per TokenEntry that is bound
// for a mint other than the wallet's own or whose swap failed.
type ReceiveResult struct {
	Amount uint64
	Errors []TokenError
}

// Receive swaps every entry in t for fresh proofs this wallet controls
// and stores them. Entries bound for a mint other than the wallet's
// own are rejected without attempting them, since this wallet only
// holds one Transport. One entry failing doesn't stop the others.
func (w *Wallet) Receive(t cashu.Token) (ReceiveResult, error) {
	cleaned := cashu.CleanToken(t)
	var result ReceiveResult

	for _, entry := range cleaned.Token {
		if entry.Mint != w.mintURL {
			result.Errors = append(result.Errors, TokenError{Mint: entry.Mint, Error: fmt.Errorf("wallet: token is for mint %s, not %s", entry.Mint, w.mintURL)})
			continue
		}

		received, err := w.receiveEntry(entry.Proofs)
		if err != nil {
			result.Errors = append(result.Errors, TokenError{Mint: entry.Mint, Error: err})
			continue
		}
		result.Amount += received
	}

	return result, nil
}

func (w *Wallet) receiveEntry(proofs cashu.Proofs) (uint64, error) {
	amount := proofs.Amount()
	if amount == 0 {
		return 0, nil
	}

	keyset, err := w.activeKeyset()
	if err != nil {
		return 0, err
	}
	keysetPath, err := w.keysetPath(keyset.Id)
	if err != nil {
		return 0, err
	}

	amounts, err := cashu.SplitAmount(amount, nil)
	if err != nil {
		return 0, err
	}

	var counter uint32
	if keysetPath != nil {
		counter, err = w.nextCounter(keyset.Id, uint32(len(amounts)))
		if err != nil {
			return 0, err
		}
	}

	outputs, _, err := planOutputs(amounts, keyset.Id, keysetPath, counter)
	if err != nil {
		return 0, err
	}

	res, err := w.transport.PostSwap(mint.PostSwapRequest{Inputs: proofs, Outputs: outputsToBlindedMessages(outputs)})
	if err != nil {
		return 0, fmt.Errorf("wallet: redeeming token: %w", err)
	}

	signingKeyset := keyset
	if len(res.Signatures) > 0 {
		signingKeyset, err = w.keysetFor(keyset, res.Signatures[0].Id)
		if err != nil {
			return 0, err
		}
	}

	newProofs, err := unblindSignatures(outputs, res.Signatures, signingKeyset.Keys)
	if err != nil {
		return 0, err
	}

	if err := w.store.SaveProofs(newProofs); err != nil {
		return 0, fmt.Errorf("wallet: saving received proofs: %w", err)
	}

	return newProofs.Amount(), nil
}
