// Package mint holds the wire DTOs for a mint's HTTP API and the
// Transport interface a Wallet drives them through. Each request and
// response type below corresponds to one NUT; they are kept in a
// single package because a wallet only ever talks to one mint surface
// at a time and the split-by-NUT layout just added import noise.
package mint

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/crypto"
)

// GetKeysResponse is the NUT-01 response body for /v1/keys[/:id].
type GetKeysResponse struct {
	Keysets []KeysetKeys `json:"keysets"`
}

type KeysetKeys struct {
	Id   string            `json:"id"`
	Unit string            `json:"unit"`
	Keys crypto.PublicKeys `json:"keys"`
}

// GetKeysetsResponse is the NUT-02 response body for /v1/keysets.
type GetKeysetsResponse struct {
	Keysets []KeysetInfo `json:"keysets"`
}

type KeysetInfo struct {
	Id          string `json:"id"`
	Unit        string `json:"unit"`
	Active      bool   `json:"active"`
	InputFeePpk uint   `json:"input_fee_ppk"`
}

// PostMintQuoteRequest/Response is the NUT-04 mint quote exchange.
type PostMintQuoteRequest struct {
	Amount uint64 `json:"amount"`
	Unit   string `json:"unit"`
}

type PostMintQuoteResponse struct {
	Quote   string `json:"quote"`
	Request string `json:"request"`
	Paid    bool   `json:"paid"`
	Expiry  int64  `json:"expiry"`
}

type PostMintRequest struct {
	Quote   string                `json:"quote"`
	Outputs cashu.BlindedMessages `json:"outputs"`
}

type PostMintResponse struct {
	Signatures cashu.BlindedSignatures `json:"signatures"`
}

// PostMeltQuoteRequest/Response and PostMeltRequest/Response are the
// NUT-05 melt quote and execution exchange. Outputs/ChangeSignatures
// carry the NUT-08 blank outputs a wallet sends so the mint can refund
// unused fee reserve as new proofs instead of burning it.
type PostMeltQuoteRequest struct {
	Request string `json:"request"`
	Unit    string `json:"unit"`
}

type PostMeltQuoteResponse struct {
	Quote      string `json:"quote"`
	Amount     uint64 `json:"amount"`
	FeeReserve uint64 `json:"fee_reserve"`
	Paid       bool   `json:"paid"`
	Expiry     int64  `json:"expiry"`
}

type PostMeltRequest struct {
	Quote   string                `json:"quote"`
	Inputs  cashu.Proofs          `json:"inputs"`
	Outputs cashu.BlindedMessages `json:"outputs,omitempty"`
}

type PostMeltResponse struct {
	Paid             bool                    `json:"paid"`
	Preimage         string                  `json:"payment_preimage"`
	ChangeSignatures cashu.BlindedSignatures `json:"change,omitempty"`
}

// PostSwapRequest/Response is the NUT-03 swap exchange.
type PostSwapRequest struct {
	Inputs  cashu.Proofs          `json:"inputs"`
	Outputs cashu.BlindedMessages `json:"outputs"`
}

type PostSwapResponse struct {
	Signatures cashu.BlindedSignatures `json:"signatures"`
}

// PostRestoreRequest/Response is the NUT-09 restore exchange.
type PostRestoreRequest struct {
	Outputs cashu.BlindedMessages `json:"outputs"`
}

type PostRestoreResponse struct {
	Outputs    cashu.BlindedMessages   `json:"outputs"`
	Signatures cashu.BlindedSignatures `json:"signatures"`
}

// ProofState is the NUT-07 spend state of one proof, identified by its
// Y = H2C(secret) point rather than its secret.
type ProofState int

const (
	Unspent ProofState = iota
	Pending
	Spent
	UnknownState
)

func (s ProofState) String() string {
	switch s {
	case Unspent:
		return "UNSPENT"
	case Pending:
		return "PENDING"
	case Spent:
		return "SPENT"
	default:
		return "unknown"
	}
}

func parseProofState(s string) ProofState {
	switch s {
	case "UNSPENT":
		return Unspent
	case "PENDING":
		return Pending
	case "SPENT":
		return Spent
	}
	return UnknownState
}

type PostCheckStateRequest struct {
	Ys []string `json:"Ys"`
}

type PostCheckStateResponse struct {
	States []ProofStateEntry `json:"states"`
}

type ProofStateEntry struct {
	Y       string
	State   ProofState
	Witness string
}

func (e *ProofStateEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Y       string `json:"Y"`
		State   string `json:"state"`
		Witness string `json:"witness"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Y = raw.Y
	e.State = parseProofState(raw.State)
	e.Witness = raw.Witness
	return nil
}

// Info is the NUT-06 mint info document.
type Info struct {
	Name            string        `json:"name"`
	Pubkey          string        `json:"pubkey"`
	Version         string        `json:"version"`
	Description     string        `json:"description"`
	LongDescription string        `json:"description_long,omitempty"`
	Contact         []ContactInfo `json:"contact,omitempty"`
	Motd            string        `json:"motd,omitempty"`
	Nuts            NutsMap       `json:"nuts"`
}

type ContactInfo struct {
	Method string `json:"method"`
	Info   string `json:"info"`
}

type NutsMap map[int]any

// MarshalJSON renders keys in ascending numeric order; encoding/json
// would otherwise sort them lexicographically ("10" before "2").
func (nm NutsMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	nuts := make([]int, 0, len(nm))
	for k := range nm {
		nuts = append(nuts, k)
	}
	slices.Sort(nuts)

	for i, n := range nuts {
		if i != 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(n))
		buf.WriteByte('"')
		buf.WriteByte(':')
		val, err := json.Marshal(nm[n])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NutSupport reports whether a mint advertises support (and NUT-09/07
// in particular, since Restore needs both) for nut n in its Info.
func (i Info) NutSupport(n int) bool {
	setting, ok := i.Nuts[n].(map[string]interface{})
	if !ok {
		return false
	}
	supported, _ := setting["supported"].(bool)
	return supported
}
