package wallet

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/crypto"
)

// toBlindSignatures converts the wire form the mint returns into the
// live-point form crypto.ConstructProofs consumes.
func toBlindSignatures(sigs cashu.BlindedSignatures) ([]crypto.BlindSignature, error) {
	out := make([]crypto.BlindSignature, len(sigs))
	for i, sig := range sigs {
		C_, err := cashu.DecodePoint(sig.C_)
		if err != nil {
			return nil, err
		}
		out[i] = crypto.BlindSignature{KeysetId: sig.Id, Amount: sig.Amount, C_: C_}
	}
	return out, nil
}

// toWireProofs hex-encodes a batch of unblinded proofs for storage and
// for spending at a mint.
func toWireProofs(proofs []crypto.Proof) cashu.Proofs {
	out := make(cashu.Proofs, len(proofs))
	for i, p := range proofs {
		out[i] = cashu.Proof{
			Amount: p.Amount,
			Id:     p.KeysetId,
			Secret: p.Secret,
			C:      cashu.EncodePoint(p.C),
		}
	}
	return out
}

func outputsToBlindedMessages(outputs []plannedOutput) cashu.BlindedMessages {
	messages := make(cashu.BlindedMessages, len(outputs))
	for i, o := range outputs {
		messages[i] = o.Message
	}
	return messages
}

func outputsToRs(outputs []plannedOutput) []*secp256k1.PrivateKey {
	rs := make([]*secp256k1.PrivateKey, len(outputs))
	for i, o := range outputs {
		rs[i] = o.R
	}
	return rs
}

func outputsToSecrets(outputs []plannedOutput) []string {
	secrets := make([]string, len(outputs))
	for i, o := range outputs {
		secrets[i] = o.Secret
	}
	return secrets
}

// unblindSignatures pairs signatures against the outputs that produced
// them (same order, same length, established by the caller) and
// returns spendable wire proofs.
func unblindSignatures(outputs []plannedOutput, sigs cashu.BlindedSignatures, keys crypto.PublicKeys) (cashu.Proofs, error) {
	blindSigs, err := toBlindSignatures(sigs)
	if err != nil {
		return nil, err
	}

	proofs, err := crypto.ConstructProofs(blindSigs, outputsToRs(outputs), outputsToSecrets(outputs), crypto.MapPublicKeys(keys))
	if err != nil {
		return nil, err
	}

	return toWireProofs(proofs), nil
}
