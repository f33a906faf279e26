package crypto

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Keyset is the mint's published mapping from denomination to public
// key for one unit, plus the id the mint tags its signatures with.
// Every denomination the wallet handles must have a key here.
type Keyset struct {
	Id          string     `json:"id"`
	Unit        string     `json:"unit"`
	Active      bool       `json:"active"`
	InputFeePpk uint       `json:"input_fee_ppk"`
	Keys        PublicKeys `json:"keys"`
}

// PublicKeys is the hex-encoded-on-the-wire form of a Keyset's Keys map.
// It marshals to an object keyed by the decimal amount; encoding/json
// orders those keys as strings ("1", "1024", "128", ...), not by numeric
// amount, so the output is reproducible but not in ascending order.
type PublicKeys map[uint64]*secp256k1.PublicKey

func (pks PublicKeys) MarshalJSON() ([]byte, error) {
	amounts := make([]uint64, 0, len(pks))
	for amount := range pks {
		amounts = append(amounts, amount)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })

	out := make(map[string]string, len(pks))
	for _, amount := range amounts {
		out[fmt.Sprintf("%d", amount)] = hex.EncodeToString(pks[amount].SerializeCompressed())
	}
	return json.Marshal(out)
}

func (pks *PublicKeys) UnmarshalJSON(data []byte) error {
	var raw map[uint64]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	keys := make(PublicKeys, len(raw))
	for amount, hexKey := range raw {
		keyBytes, err := hex.DecodeString(hexKey)
		if err != nil {
			return fmt.Errorf("invalid public key hex: %w", err)
		}
		pubkey, err := secp256k1.ParsePubKey(keyBytes)
		if err != nil {
			return fmt.Errorf("invalid public key: %w", err)
		}
		keys[amount] = pubkey
	}
	*pks = keys
	return nil
}

// MapPublicKeys decodes a wire PublicKeys map into amount -> point.
func MapPublicKeys(keys PublicKeys) map[uint64]*secp256k1.PublicKey {
	out := make(map[uint64]*secp256k1.PublicKey, len(keys))
	for amount, key := range keys {
		out[amount] = key
	}
	return out
}

// DeriveKeysetId returns the mint's keyset id for a set of public keys:
// sort by amount ascending, concatenate the compressed points, SHA-256
// the result, and prefix the first 14 hex characters with a version
// byte. Used only to validate a keyset a mint claims to own; the
// mint-supplied id is authoritative everywhere else a keyset id is
// used.
func DeriveKeysetId(keys map[uint64]*secp256k1.PublicKey) string {
	type entry struct {
		amount uint64
		pk     *secp256k1.PublicKey
	}
	entries := make([]entry, 0, len(keys))
	for amount, key := range keys {
		entries = append(entries, entry{amount, key})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].amount < entries[j].amount })

	concatenated := make([]byte, 0, len(entries)*33)
	for _, e := range entries {
		concatenated = append(concatenated, e.pk.SerializeCompressed()...)
	}

	return "00" + hex.EncodeToString(hashSHA256(concatenated))[:14]
}

// KeysetInt extracts the unsigned integer nut13 derivation uses as a
// hardened child index: the keyset id's first 8 bytes read big-endian,
// reduced modulo 2^31-1 so it fits a hardened BIP-32 index.
func KeysetInt(keysetId string) (uint32, error) {
	idBytes, err := hex.DecodeString(keysetId)
	if err != nil {
		return 0, fmt.Errorf("invalid keyset id: %w", err)
	}
	if len(idBytes) < 8 {
		padded := make([]byte, 8)
		copy(padded[8-len(idBytes):], idBytes)
		idBytes = padded
	}

	value := binary.BigEndian.Uint64(idBytes[:8])
	return uint32(value % (1<<31 - 1)), nil
}
