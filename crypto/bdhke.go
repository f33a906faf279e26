package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ecashkit/wallet/cashu"
)

// ErrUnknownDenomination is cashu.ErrUnknownDenomination, so errors.Is
// matches it under either package's name.
var ErrUnknownDenomination = cashu.ErrUnknownDenomination

// Blind computes B_ = Y + rG for secret, sampling r uniformly from
// [1, n-1] when r is nil. It returns the blinded point and the r used,
// so callers that pass a deterministic r get it echoed back.
func Blind(secret []byte, r *secp256k1.PrivateKey) (*secp256k1.PublicKey, *secp256k1.PrivateKey, error) {
	if r == nil {
		generated, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, nil, err
		}
		r = generated
	}

	Y := HashToCurve(secret)
	rG := scalarBaseMult(r)
	B_ := addPoints(Y, rG)

	return B_, r, nil
}

// Unblind computes C = C_ - rK.
func Unblind(C_ *secp256k1.PublicKey, r *secp256k1.PrivateKey, K *secp256k1.PublicKey) *secp256k1.PublicKey {
	rK := scalarMult(r, K)
	return subtractPoints(C_, rK)
}

// Sign computes C_ = kB_. Only ever called mint-side; kept here because
// it shares the scalar-mult plumbing and tests use it to play the mint
// before checking results with Verify.
func Sign(B_ *secp256k1.PublicKey, k *secp256k1.PrivateKey) *secp256k1.PublicKey {
	return scalarMult(k, B_)
}

// Verify reports whether C == k*HashToCurve(secret).
func Verify(secret []byte, k *secp256k1.PrivateKey, C *secp256k1.PublicKey) bool {
	Y := HashToCurve(secret)
	expected := scalarMult(k, Y)
	return C.IsEqual(expected)
}

// BlindSignature is the mint's response to one BlindedMessage: C_ = k*B_
// for the mint's private key k at that amount.
type BlindSignature struct {
	KeysetId string
	Amount   uint64
	C_       *secp256k1.PublicKey
}

// ConstructProofs pairs each signature with the r and secret the wallet
// retained from planning, looks up the mint's public key for that
// signature's amount in keys, and unblinds it into a Proof.
//
// signatures, rs and secrets must be the same length and in matching
// order — that invariant is established by the output planner, so a
// mismatch here means the caller built the three slices independently
// and is a programming error, not a recoverable one.
func ConstructProofs(signatures []BlindSignature, rs []*secp256k1.PrivateKey, secrets []string,
	keys map[uint64]*secp256k1.PublicKey) ([]Proof, error) {

	if len(signatures) != len(rs) || len(signatures) != len(secrets) {
		panic("crypto: ConstructProofs called with mismatched slice lengths")
	}

	proofs := make([]Proof, len(signatures))
	for i, sig := range signatures {
		K, ok := keys[sig.Amount]
		if !ok {
			return nil, ErrUnknownDenomination
		}

		C := Unblind(sig.C_, rs[i], K)
		proofs[i] = Proof{
			KeysetId: sig.KeysetId,
			Amount:   sig.Amount,
			Secret:   secrets[i],
			C:        C,
		}
	}
	return proofs, nil
}

// Proof is a bearer token redeemable at the mint: possession proves
// spend authority until the mint marks Secret as SPENT.
type Proof struct {
	KeysetId string
	Amount   uint64
	Secret   string
	C        *secp256k1.PublicKey
}
