package cashu

import (
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Unit is the accounting unit a wallet operates in. Only satoshis are
// supported; the core never converts between units.
type Unit int

const Sat Unit = 0

func (u Unit) String() string {
	switch u {
	case Sat:
		return "sat"
	default:
		return "unknown"
	}
}

// BlindedMessage is the wire form of an output sent to the mint:
// B_ = Y + rG, where Y = H2C(secret).
type BlindedMessage struct {
	Amount   uint64 `json:"amount"`
	Id       string `json:"id"`
	B_       string `json:"B_"`
}

type BlindedMessages []BlindedMessage

func (bm BlindedMessages) Amount() uint64 {
	var total uint64
	for _, m := range bm {
		total += m.Amount
	}
	return total
}

// BlindedSignature is the mint's response to a BlindedMessage:
// C_ = k*B_ for the mint's private key k at that amount.
type BlindedSignature struct {
	Amount uint64 `json:"amount"`
	Id     string `json:"id"`
	C_     string `json:"C_"`
}

type BlindedSignatures []BlindedSignature

// Proof is a bearer token: possession is spend authority until the mint
// marks Secret SPENT.
type Proof struct {
	Amount  uint64 `json:"amount"`
	Id      string `json:"id"`
	Secret  string `json:"secret"`
	C       string `json:"C"`
	Witness string `json:"witness,omitempty"`
}

type Proofs []Proof

func (proofs Proofs) Amount() uint64 {
	var total uint64
	for _, p := range proofs {
		total += p.Amount
	}
	return total
}

// EncodePoint hex-encodes a compressed secp256k1 point for the wire.
func EncodePoint(p *secp256k1.PublicKey) string {
	return hex.EncodeToString(p.SerializeCompressed())
}

// DecodePoint parses a compressed secp256k1 point off the wire.
func DecodePoint(s string) (*secp256k1.PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidPoint
	}
	p, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, ErrInvalidPoint
	}
	return p, nil
}
