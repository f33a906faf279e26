package wallet

import (
	"fmt"
	"sort"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/mint"
)

// Send returns amount worth of proofs ready to hand to a recipient,
// split according to pref if given. If pref is given it overrides
// amount: the target becomes the sum of pref's denominations, since a
// caller asking for specific denominations is stating the amount
// through pref rather than through the amount argument. Send selects
// stored proofs covering at least the target; if their total already
// matches it exactly and no preference was given they're returned
// as-is, otherwise they're swapped at the mint for an exact set plus a
// change set that stays in the wallet — a preference always forces a
// swap, since the wallet can't otherwise guarantee the recipient gets
// the exact denominations asked for.
func (w *Wallet) Send(amount uint64, pref []cashu.Preference) (cashu.Proofs, error) {
	target := amount
	if pref != nil {
		target = cashu.PreferenceTotal(pref)
	}

	available := w.store.GetProofs()
	if available.Amount() < target {
		return nil, cashu.ErrInsufficientFunds
	}

	selected, total := selectProofs(available, target)

	if total == target && pref == nil {
		if err := w.store.DeleteProofs(secretsOf(selected)); err != nil {
			return nil, fmt.Errorf("wallet: removing sent proofs: %w", err)
		}
		return selected, nil
	}

	sendAmounts, err := cashu.SplitAmount(target, pref)
	if err != nil {
		return nil, err
	}
	keepAmounts, err := cashu.SplitAmount(total-target, nil)
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

	allAmounts := append(append([]uint64{}, sendAmounts...), keepAmounts...)
	var counter uint32
	if keysetPath != nil {
		counter, err = w.nextCounter(keyset.Id, uint32(len(allAmounts)))
		if err != nil {
			return nil, err
		}
	}

	outputs, _, err := planOutputs(allAmounts, keyset.Id, keysetPath, counter)
	if err != nil {
		return nil, err
	}

	res, err := w.transport.PostSwap(mint.PostSwapRequest{Inputs: selected, Outputs: outputsToBlindedMessages(outputs)})
	if err != nil {
		return nil, fmt.Errorf("wallet: swapping: %w", err)
	}

	signingKeyset := keyset
	if len(res.Signatures) > 0 {
		signingKeyset, err = w.keysetFor(keyset, res.Signatures[0].Id)
		if err != nil {
			return nil, err
		}
	}

	proofs, err := unblindSignatures(outputs, res.Signatures, signingKeyset.Keys)
	if err != nil {
		return nil, err
	}

	sendProofs := proofs[:len(sendAmounts)]
	keepProofs := proofs[len(sendAmounts):]

	if err := w.store.DeleteProofs(secretsOf(selected)); err != nil {
		return nil, fmt.Errorf("wallet: removing spent proofs: %w", err)
	}
	if err := w.store.SaveProofs(keepProofs); err != nil {
		return nil, fmt.Errorf("wallet: saving change proofs: %w", err)
	}

	return sendProofs, nil
}

// selectProofs greedily picks proofs largest-first until their total
// reaches at least amount, minimizing the proof count handed to the
// mint (and so the number of new outputs a swap has to create).
func selectProofs(proofs cashu.Proofs, amount uint64) (cashu.Proofs, uint64) {
	sorted := make(cashu.Proofs, len(proofs))
	copy(sorted, proofs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	var selected cashu.Proofs
	var total uint64
	for _, p := range sorted {
		if total >= amount {
			break
		}
		selected = append(selected, p)
		total += p.Amount
	}
	return selected, total
}

func secretsOf(proofs cashu.Proofs) []string {
	secrets := make([]string, len(proofs))
	for i, p := range proofs {
		secrets[i] = p.Secret
	}
	return secrets
}
