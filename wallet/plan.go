package wallet

import (
	"encoding/hex"
	"fmt"
	"math/bits"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/cashu/nuts/nut13"
	"github.com/ecashkit/wallet/crypto"
)

// plannedOutput is one blinded message together with the secret and
// blinding factor the wallet needs to keep around to unblind whatever
// signature the mint returns for it.
type plannedOutput struct {
	Message cashu.BlindedMessage
	Secret  string
	R       *secp256k1.PrivateKey
}

// planOutputs builds len(amounts) blinded messages for keysetId, one
// per amount, either deterministically (when keysetPath is non-nil,
// consuming sequential counter values starting at counter) or with
// random secrets and blinding factors (when keysetPath is nil).
//
// A counter without a seed is a programming error the caller must
// avoid by checking the wallet's own seed state first; planOutputs
// itself never decides whether determinism is required, it just does
// what it's told.
func planOutputs(amounts []uint64, keysetId string, keysetPath *hdkeychain.ExtendedKey, counter uint32) ([]plannedOutput, uint32, error) {
	outputs := make([]plannedOutput, len(amounts))

	for i, amount := range amounts {
		var secret string
		var r *secp256k1.PrivateKey
		var err error

		if keysetPath != nil {
			secret, err = nut13.DeriveSecret(keysetPath, counter)
			if err != nil {
				return nil, 0, fmt.Errorf("wallet: deriving secret at counter %d: %w", counter, err)
			}
			r, err = nut13.DeriveBlindingFactor(keysetPath, counter)
			if err != nil {
				return nil, 0, fmt.Errorf("wallet: deriving blinding factor at counter %d: %w", counter, err)
			}
			counter++
		} else {
			secretBytes, err2 := randomSecret()
			if err2 != nil {
				return nil, 0, err2
			}
			secret = secretBytes
		}

		B_, rUsed, err := crypto.Blind([]byte(secret), r)
		if err != nil {
			return nil, 0, fmt.Errorf("wallet: blinding secret: %w", err)
		}

		outputs[i] = plannedOutput{
			Message: cashu.BlindedMessage{
				Amount: amount,
				Id:     keysetId,
				B_:     cashu.EncodePoint(B_),
			},
			Secret: secret,
			R:      rUsed,
		}
	}

	return outputs, counter, nil
}

// planBlankOutputs builds the NUT-08 blank outputs a melt request
// attaches so the mint can refund unspent fee reserve as new proofs.
// The count is ceil(log2(feeReserve)), clamped to at least 1 once
// feeReserve is non-zero and to 0 when it is zero: a reserve of 1..2
// needs one blank output, 3..4 needs two, and so on.
func planBlankOutputs(feeReserve uint64, keysetId string, keysetPath *hdkeychain.ExtendedKey, counter uint32) ([]plannedOutput, uint32, error) {
	count := blankOutputCount(feeReserve)
	if count == 0 {
		return nil, counter, nil
	}

	amounts := make([]uint64, count)
	for i := range amounts {
		amounts[i] = 1
	}
	return planOutputs(amounts, keysetId, keysetPath, counter)
}

func blankOutputCount(feeReserve uint64) int {
	if feeReserve == 0 {
		return 0
	}
	count := bits.Len64(feeReserve - 1) // ceil(log2(feeReserve))
	if count < 1 {
		count = 1
	}
	return count
}

func randomSecret() (string, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", fmt.Errorf("wallet: generating random secret: %w", err)
	}
	return hex.EncodeToString(priv.Serialize()), nil
}
