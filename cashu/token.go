package cashu

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// TokenEntry bundles the proofs redeemable at one mint.
type TokenEntry struct {
	Mint   string `json:"mint"`
	Proofs Proofs `json:"proofs"`
}

// Token is the decoded form of a `cashuA`/`cashuB` string: an ordered
// list of TokenEntry plus an optional memo.
type Token struct {
	Token []TokenEntry `json:"token"`
	Memo  string       `json:"memo,omitempty"`
	Unit  string       `json:"unit,omitempty"`
}

// Amount sums every proof across every entry.
func (t Token) Amount() uint64 {
	var total uint64
	for _, entry := range t.Token {
		total += entry.Proofs.Amount()
	}
	return total
}

// CleanToken coalesces entries that share a mint url into one, in the
// order each mint url first appears. It never merges proofs by C value;
// duplicate C values across merged entries are left as-is for the
// caller to notice.
func CleanToken(t Token) Token {
	order := make([]string, 0, len(t.Token))
	byMint := make(map[string]Proofs)

	for _, entry := range t.Token {
		if len(entry.Proofs) == 0 {
			continue
		}
		if _, ok := byMint[entry.Mint]; !ok {
			order = append(order, entry.Mint)
		}
		byMint[entry.Mint] = append(byMint[entry.Mint], entry.Proofs...)
	}

	cleaned := make([]TokenEntry, len(order))
	for i, mint := range order {
		cleaned[i] = TokenEntry{Mint: mint, Proofs: byMint[mint]}
	}

	return Token{Token: cleaned, Memo: t.Memo, Unit: t.Unit}
}

// NewToken builds a token from a flat proof list bound for a single
// mint, default-splitting nothing — the proofs are carried as-is.
func NewToken(proofs Proofs, mintURL string, unit Unit) Token {
	return Token{
		Token: []TokenEntry{{Mint: mintURL, Proofs: proofs}},
		Unit:  unit.String(),
	}
}

const (
	tokenV3Prefix = "cashuA"
	tokenV4Prefix = "cashuB"
)

// EncodeTokenV3 serializes t as `cashuA` + base64url(JSON), the V3 wire
// format.
func EncodeTokenV3(t Token) (string, error) {
	jsonBytes, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("cashu: marshal token: %w", err)
	}
	return tokenV3Prefix + base64.URLEncoding.EncodeToString(jsonBytes), nil
}

// DecodeTokenV3 parses a `cashuA` token string. Entries with no proofs
// are dropped.
func DecodeTokenV3(tokenStr string) (Token, error) {
	if len(tokenStr) < len(tokenV3Prefix) || tokenStr[:len(tokenV3Prefix)] != tokenV3Prefix {
		return Token{}, ErrMalformedToken
	}
	body := tokenStr[len(tokenV3Prefix):]

	raw, err := base64.URLEncoding.DecodeString(body)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(body)
		if err != nil {
			return Token{}, ErrMalformedToken
		}
	}

	var t Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return Token{}, ErrMalformedToken
	}

	if err := validatePoints(t); err != nil {
		return Token{}, err
	}
	return dropEmptyEntries(t), nil
}

// cborToken is the V4 wire shape: compact keys, binary keyset ids and
// C values, proofs grouped by keyset within each mint entry.
type cborToken struct {
	TokenProofs []cborTokenProof `cbor:"t"`
	Memo        string           `cbor:"d,omitempty"`
	MintURL     string           `cbor:"m"`
	Unit        string           `cbor:"u"`
}

type cborTokenProof struct {
	Id     []byte      `cbor:"i"`
	Proofs []cborProof `cbor:"p"`
}

type cborProof struct {
	Amount uint64 `cbor:"a"`
	Secret string `cbor:"s"`
	C      []byte `cbor:"c"`
}

// EncodeTokenV4 serializes t as `cashuB` + base64url(CBOR), the compact
// binary wire format. All entries must share one mint; that mint's
// proofs are grouped by keyset id.
func EncodeTokenV4(t Token) (string, error) {
	if len(t.Token) == 0 {
		return "", ErrMalformedToken
	}

	byKeyset := make(map[string][]cborProof)
	var order []string
	for _, entry := range t.Token {
		for _, proof := range entry.Proofs {
			cBytes, err := hex.DecodeString(proof.C)
			if err != nil {
				return "", ErrInvalidPoint
			}
			if _, ok := byKeyset[proof.Id]; !ok {
				order = append(order, proof.Id)
			}
			byKeyset[proof.Id] = append(byKeyset[proof.Id], cborProof{
				Amount: proof.Amount,
				Secret: proof.Secret,
				C:      cBytes,
			})
		}
	}

	grouped := make([]cborTokenProof, len(order))
	for i, id := range order {
		idBytes, err := hex.DecodeString(id)
		if err != nil {
			return "", ErrMalformedToken
		}
		grouped[i] = cborTokenProof{Id: idBytes, Proofs: byKeyset[id]}
	}

	wire := cborToken{
		TokenProofs: grouped,
		Memo:        t.Memo,
		MintURL:     t.Token[0].Mint,
		Unit:        t.Unit,
	}

	data, err := cbor.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("cashu: cbor marshal token: %w", err)
	}
	return tokenV4Prefix + base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeTokenV4 parses a `cashuB` token string.
func DecodeTokenV4(tokenStr string) (Token, error) {
	if len(tokenStr) < len(tokenV4Prefix) || tokenStr[:len(tokenV4Prefix)] != tokenV4Prefix {
		return Token{}, ErrMalformedToken
	}
	body := tokenStr[len(tokenV4Prefix):]

	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		raw, err = base64.URLEncoding.DecodeString(body)
		if err != nil {
			return Token{}, ErrMalformedToken
		}
	}

	var wire cborToken
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return Token{}, ErrMalformedToken
	}

	proofs := make(Proofs, 0)
	for _, group := range wire.TokenProofs {
		id := hex.EncodeToString(group.Id)
		for _, p := range group.Proofs {
			proofs = append(proofs, Proof{
				Amount: p.Amount,
				Id:     id,
				Secret: p.Secret,
				C:      hex.EncodeToString(p.C),
			})
		}
	}

	t := Token{
		Token: []TokenEntry{{Mint: wire.MintURL, Proofs: proofs}},
		Memo:  wire.Memo,
		Unit:  wire.Unit,
	}

	if err := validatePoints(t); err != nil {
		return Token{}, err
	}
	return dropEmptyEntries(t), nil
}

// DecodeToken dispatches on the version prefix: `cashuB` strings go to
// DecodeTokenV4 and `cashuA` strings to DecodeTokenV3, with no fallback
// between the two; any other prefix is ErrMalformedToken.
func DecodeToken(tokenStr string) (Token, error) {
	if len(tokenStr) >= len(tokenV4Prefix) && tokenStr[:len(tokenV4Prefix)] == tokenV4Prefix {
		return DecodeTokenV4(tokenStr)
	}
	if len(tokenStr) >= len(tokenV3Prefix) && tokenStr[:len(tokenV3Prefix)] == tokenV3Prefix {
		return DecodeTokenV3(tokenStr)
	}
	return Token{}, ErrMalformedToken
}

func dropEmptyEntries(t Token) Token {
	kept := make([]TokenEntry, 0, len(t.Token))
	for _, entry := range t.Token {
		if len(entry.Proofs) > 0 {
			kept = append(kept, entry)
		}
	}
	t.Token = kept
	return t
}

func validatePoints(t Token) error {
	for _, entry := range t.Token {
		for _, proof := range entry.Proofs {
			if _, err := DecodePoint(proof.C); err != nil {
				return ErrInvalidPoint
			}
		}
	}
	return nil
}
