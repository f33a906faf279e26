package wallet

import (
	"fmt"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/mint"
)

// RequestMint asks the mint for a lightning invoice to mint amount,
// returning the quote id MintTokens needs once the invoice is paid.
func (w *Wallet) RequestMint(amount uint64) (*mint.PostMintQuoteResponse, error) {
	res, err := w.transport.PostMintQuote(mint.PostMintQuoteRequest{Amount: amount, Unit: w.unit.String()})
	if err != nil {
		return nil, fmt.Errorf("wallet: requesting mint quote: %w", err)
	}
	return res, nil
}

// MintQuoteState polls whether a mint quote has been paid.
func (w *Wallet) MintQuoteState(quoteId string) (*mint.PostMintQuoteResponse, error) {
	res, err := w.transport.GetMintQuoteState(quoteId)
	if err != nil {
		return nil, fmt.Errorf("wallet: checking mint quote: %w", err)
	}
	return res, nil
}

// MintTokens redeems a paid mint quote for amount worth of new proofs,
// split according to pref if given or the default binary decomposition
// otherwise.
func (w *Wallet) MintTokens(quoteId string, amount uint64, pref []cashu.Preference) (cashu.Proofs, error) {
	amounts, err := cashu.SplitAmount(amount, pref)
	if err != nil {
		return nil, err
	}

	keyset, err := w.activeKeyset()
	if err != nil {
		return nil, err
	}

	keysetPath, err := w.keysetPath(keyset.Id)
	if err != nil {
		return nil, err
	}

	var counter uint32
	if keysetPath != nil {
		counter, err = w.nextCounter(keyset.Id, uint32(len(amounts)))
		if err != nil {
			return nil, err
		}
	}

	outputs, _, err := planOutputs(amounts, keyset.Id, keysetPath, counter)
	if err != nil {
		return nil, err
	}

	res, err := w.transport.PostMint(mint.PostMintRequest{Quote: quoteId, Outputs: outputsToBlindedMessages(outputs)})
	if err != nil {
		return nil, fmt.Errorf("wallet: minting: %w", err)
	}

	proofs, err := unblindSignatures(outputs, res.Signatures, keyset.Keys)
	if err != nil {
		return nil, err
	}

	if err := w.store.SaveProofs(proofs); err != nil {
		return nil, fmt.Errorf("wallet: saving minted proofs: %w", err)
	}

	return proofs, nil
}
