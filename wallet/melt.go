package wallet

import (
	"fmt"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/mint"
)

// MeltQuote asks the mint what a lightning payment of invoice will
// cost in proofs, including its fee reserve.
func (w *Wallet) MeltQuote(invoice string) (*mint.PostMeltQuoteResponse, error) {
	res, err := w.transport.PostMeltQuote(mint.PostMeltQuoteRequest{Request: invoice, Unit: w.unit.String()})
	if err != nil {
		return nil, fmt.Errorf("wallet: requesting melt quote: %w", err)
	}
	return res, nil
}

// MeltResult is what a completed melt returned: whether the invoice
// was paid, its preimage, and any fee-reserve change that came back as
// new proofs via NUT-08.
type MeltResult struct {
	Paid     bool
	Preimage string
	Change   cashu.Proofs
}

// MeltTokens pays quote with proofs worth exactly amount+FeeReserve,
// first swapping stored proofs down to that total via Send so any excess
// stays in the wallet, and attaching NUT-08 blank outputs so unused fee
// reserve returns as proofs instead of being forfeited.
func (w *Wallet) MeltTokens(quote *mint.PostMeltQuoteResponse) (MeltResult, error) {
	total := quote.Amount + quote.FeeReserve

	// Send takes its result out of the store; keep it stored until the
	// mint confirms payment below.
	selected, err := w.Send(total, nil)
	if err != nil {
		return MeltResult{}, err
	}
	if err := w.store.SaveProofs(selected); err != nil {
		return MeltResult{}, fmt.Errorf("wallet: saving melt inputs: %w", err)
	}

	keyset, err := w.activeKeyset()
	if err != nil {
		return MeltResult{}, err
	}
	keysetPath, err := w.keysetPath(keyset.Id)
	if err != nil {
		return MeltResult{}, err
	}

	var counter uint32
	blankCount := blankOutputCount(quote.FeeReserve)
	if keysetPath != nil && blankCount > 0 {
		counter, err = w.nextCounter(keyset.Id, uint32(blankCount))
		if err != nil {
			return MeltResult{}, err
		}
	}

	blanks, _, err := planBlankOutputs(quote.FeeReserve, keyset.Id, keysetPath, counter)
	if err != nil {
		return MeltResult{}, err
	}

	req := mint.PostMeltRequest{Quote: quote.Quote, Inputs: selected}
	if len(blanks) > 0 {
		req.Outputs = outputsToBlindedMessages(blanks)
	}

	res, err := w.transport.PostMelt(req)
	if err != nil {
		return MeltResult{}, fmt.Errorf("wallet: melting: %w", err)
	}

	result := MeltResult{Paid: res.Paid, Preimage: res.Preimage}

	// A 200 response can still carry paid:false (e.g. the payment is
	// still in flight); only destroy the spent inputs once the mint
	// confirms payment, or a failed/pending melt would burn spendable
	// proofs for nothing.
	if res.Paid {
		if err := w.store.DeleteProofs(secretsOf(selected)); err != nil {
			return MeltResult{}, fmt.Errorf("wallet: removing spent proofs: %w", err)
		}
	}

	if len(res.ChangeSignatures) > 0 && len(blanks) > 0 {
		n := len(res.ChangeSignatures)
		if n > len(blanks) {
			n = len(blanks)
		}

		signingKeyset, err := w.keysetFor(keyset, res.ChangeSignatures[0].Id)
		if err != nil {
			return MeltResult{}, err
		}

		change, err := unblindSignatures(blanks[:n], res.ChangeSignatures[:n], signingKeyset.Keys)
		if err != nil {
			return MeltResult{}, err
		}
		if err := w.store.SaveProofs(change); err != nil {
			return MeltResult{}, fmt.Errorf("wallet: saving melt change: %w", err)
		}
		result.Change = change
	}

	return result, nil
}
