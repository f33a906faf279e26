package wallet

import (
	"fmt"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/crypto"
	"github.com/ecashkit/wallet/mint"
)

// CheckSpent queries the mint for the current state of proofs via
// their Y = H2C(secret) points and removes whichever ones the mint
// reports spent from the store, returning just those.
func (w *Wallet) CheckSpent(proofs cashu.Proofs) (cashu.Proofs, error) {
	if len(proofs) == 0 {
		return nil, nil
	}

	ys := make([]string, len(proofs))
	bySecret := make(map[string]cashu.Proof, len(proofs))
	for i, p := range proofs {
		y := crypto.HashToCurve([]byte(p.Secret))
		yHex := cashu.EncodePoint(y)
		ys[i] = yHex
		bySecret[yHex] = p
	}

	res, err := w.transport.PostCheckState(mint.PostCheckStateRequest{Ys: ys})
	if err != nil {
		return nil, fmt.Errorf("wallet: checking proof states: %w", err)
	}

	var spent cashu.Proofs
	for _, state := range res.States {
		if state.State == mint.Spent {
			spent = append(spent, bySecret[state.Y])
		}
	}

	if len(spent) > 0 {
		if err := w.store.DeleteProofs(secretsOf(spent)); err != nil {
			return nil, fmt.Errorf("wallet: removing spent proofs: %w", err)
		}
	}

	return spent, nil
}
