package wallet

import (
	"fmt"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/crypto"
	"github.com/ecashkit/wallet/mint"
)

// fakeMint is an in-memory stand-in for mint.Transport, good enough to
// drive the wallet orchestrator through mint/swap/melt/restore without
// a real HTTP mint. It signs with a single, fixed keyset covering
// every power of two up to 2048.
type fakeMint struct {
	mu         sync.Mutex
	keysetId   string
	keys       map[uint64]*secp256k1.PrivateKey
	spent      map[string]bool // Y hex -> spent
	nextQuote  int
	quotePaid  map[string]bool
	restoreLog map[string]cashu.BlindedMessage // B_ -> original output, only for outputs ever minted/swapped
}

func newFakeMint() *fakeMint {
	keys := make(map[uint64]*secp256k1.PrivateKey)
	for amount := uint64(1); amount <= 2048; amount *= 2 {
		k, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			panic(err)
		}
		keys[amount] = k
	}

	pubKeys := make(map[uint64]*secp256k1.PublicKey, len(keys))
	for amount, k := range keys {
		pubKeys[amount] = k.PubKey()
	}
	id := crypto.DeriveKeysetId(pubKeys)

	return &fakeMint{
		keysetId:   id,
		keys:       keys,
		spent:      make(map[string]bool),
		quotePaid:  make(map[string]bool),
		restoreLog: make(map[string]cashu.BlindedMessage),
	}
}

func (m *fakeMint) publicKeys() crypto.PublicKeys {
	out := make(crypto.PublicKeys, len(m.keys))
	for amount, k := range m.keys {
		out[amount] = k.PubKey()
	}
	return out
}

func (m *fakeMint) GetKeys() (*mint.GetKeysResponse, error) {
	return &mint.GetKeysResponse{Keysets: []mint.KeysetKeys{{Id: m.keysetId, Unit: cashu.Sat.String(), Keys: m.publicKeys()}}}, nil
}

func (m *fakeMint) GetKeysetKeys(id string) (*mint.GetKeysResponse, error) {
	if id != m.keysetId {
		return &mint.GetKeysResponse{}, nil
	}
	return m.GetKeys()
}

func (m *fakeMint) GetKeysets() (*mint.GetKeysetsResponse, error) {
	return &mint.GetKeysetsResponse{Keysets: []mint.KeysetInfo{{Id: m.keysetId, Unit: cashu.Sat.String(), Active: true}}}, nil
}

func (m *fakeMint) GetInfo() (*mint.Info, error) {
	return &mint.Info{
		Name: "fake mint",
		Nuts: mint.NutsMap{
			7: map[string]interface{}{"supported": true},
			9: map[string]interface{}{"supported": true},
		},
	}, nil
}

func (m *fakeMint) PostMintQuote(req mint.PostMintQuoteRequest) (*mint.PostMintQuoteResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextQuote++
	id := fmt.Sprintf("quote-%d", m.nextQuote)
	m.quotePaid[id] = true // simulate instantly-paid invoice
	return &mint.PostMintQuoteResponse{Quote: id, Request: "lnbc...", Paid: true}, nil
}

func (m *fakeMint) GetMintQuoteState(quoteId string) (*mint.PostMintQuoteResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &mint.PostMintQuoteResponse{Quote: quoteId, Paid: m.quotePaid[quoteId]}, nil
}

func (m *fakeMint) PostMint(req mint.PostMintRequest) (*mint.PostMintResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.quotePaid[req.Quote] {
		return nil, fmt.Errorf("fake mint: quote %s not paid", req.Quote)
	}
	return m.signLocked(req.Outputs)
}

func (m *fakeMint) PostMeltQuote(req mint.PostMeltQuoteRequest) (*mint.PostMeltQuoteResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextQuote++
	id := fmt.Sprintf("melt-quote-%d", m.nextQuote)
	return &mint.PostMeltQuoteResponse{Quote: id, Amount: 10, FeeReserve: 1}, nil
}

func (m *fakeMint) PostMelt(req mint.PostMeltRequest) (*mint.PostMeltResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range req.Inputs {
		y := cashu.EncodePoint(crypto.HashToCurve([]byte(p.Secret)))
		m.spent[y] = true
	}

	res := &mint.PostMeltResponse{Paid: true, Preimage: "preimage"}
	if len(req.Outputs) > 0 {
		signed, err := m.signLocked(req.Outputs)
		if err != nil {
			return nil, err
		}
		res.ChangeSignatures = signed.Signatures
	}
	return res, nil
}

func (m *fakeMint) PostSwap(req mint.PostSwapRequest) (*mint.PostSwapResponse, error) {
	m.mu.Lock()
	for _, p := range req.Inputs {
		y := cashu.EncodePoint(crypto.HashToCurve([]byte(p.Secret)))
		m.spent[y] = true
	}
	m.mu.Unlock()

	res, err := m.sign(req.Outputs)
	if err != nil {
		return nil, err
	}
	return &mint.PostSwapResponse{Signatures: res.Signatures}, nil
}

func (m *fakeMint) PostCheckState(req mint.PostCheckStateRequest) (*mint.PostCheckStateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := make([]mint.ProofStateEntry, len(req.Ys))
	for i, y := range req.Ys {
		state := mint.Unspent
		if m.spent[y] {
			state = mint.Spent
		}
		states[i] = mint.ProofStateEntry{Y: y, State: state}
	}
	return &mint.PostCheckStateResponse{States: states}, nil
}

func (m *fakeMint) PostRestore(req mint.PostRestoreRequest) (*mint.PostRestoreResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched cashu.BlindedMessages
	for _, out := range req.Outputs {
		if original, ok := m.restoreLog[out.B_]; ok {
			matched = append(matched, original)
		}
	}
	if len(matched) == 0 {
		return &mint.PostRestoreResponse{}, nil
	}

	signed, err := m.signLocked(matched)
	if err != nil {
		return nil, err
	}
	return &mint.PostRestoreResponse{Outputs: matched, Signatures: signed.Signatures}, nil
}

func (m *fakeMint) sign(outputs cashu.BlindedMessages) (*mint.PostMintResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signLocked(outputs)
}

func (m *fakeMint) signLocked(outputs cashu.BlindedMessages) (*mint.PostMintResponse, error) {
	sigs := make(cashu.BlindedSignatures, len(outputs))
	for i, out := range outputs {
		k, ok := m.keys[out.Amount]
		if !ok {
			return nil, fmt.Errorf("fake mint: no key for amount %d", out.Amount)
		}
		B_, err := cashu.DecodePoint(out.B_)
		if err != nil {
			return nil, err
		}
		C_ := crypto.Sign(B_, k)
		sigs[i] = cashu.BlindedSignature{Amount: out.Amount, Id: m.keysetId, C_: cashu.EncodePoint(C_)}
		m.restoreLog[out.B_] = out
	}
	return &mint.PostMintResponse{Signatures: sigs}, nil
}
