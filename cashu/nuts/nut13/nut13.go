// Package nut13 derives per-(keyset,counter) secrets and blinding
// factors from a BIP-39 seed, so a wallet can fully restore its proofs
// from the mnemonic alone.
//
// [NUT-13]: https://github.com/cashubtc/nuts/blob/main/13.md
package nut13

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ecashkit/wallet/crypto"
)

// purposeIndex is the hardened BIP-32 purpose this NUT reserves.
const purposeIndex = 129372

// DeriveKeysetPath returns the extended key at m/129372'/0'/keyset_int',
// the common ancestor for every secret and blinding factor derived
// against keysetId.
func DeriveKeysetPath(master *hdkeychain.ExtendedKey, keysetId string) (*hdkeychain.ExtendedKey, error) {
	keysetInt, err := crypto.KeysetInt(keysetId)
	if err != nil {
		return nil, err
	}

	purpose, err := master.Derive(hdkeychain.HardenedKeyStart + purposeIndex)
	if err != nil {
		return nil, err
	}

	coinType, err := purpose.Derive(hdkeychain.HardenedKeyStart + 0)
	if err != nil {
		return nil, err
	}

	return coinType.Derive(hdkeychain.HardenedKeyStart + keysetInt)
}

// MasterKeyFromSeed builds the BIP-32 master key this package derives
// from, over the seed the wallet holds (mainnet params are used only to
// pick version bytes; no chain state is consulted).
func MasterKeyFromSeed(seed []byte) (*hdkeychain.ExtendedKey, error) {
	return hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
}

// DeriveSecret returns the hex-encoded 32-byte secret at
// m/129372'/0'/keyset_int'/counter'/0'.
func DeriveSecret(keysetPath *hdkeychain.ExtendedKey, counter uint32) (string, error) {
	counterPath, err := keysetPath.Derive(hdkeychain.HardenedKeyStart + counter)
	if err != nil {
		return "", err
	}

	secretPath, err := counterPath.Derive(hdkeychain.HardenedKeyStart + 0)
	if err != nil {
		return "", err
	}

	secretKey, err := secretPath.ECPrivKey()
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(secretKey.Serialize()), nil
}

// DeriveBlindingFactor returns the scalar at
// m/129372'/0'/keyset_int'/counter'/1', reduced mod the curve order.
func DeriveBlindingFactor(keysetPath *hdkeychain.ExtendedKey, counter uint32) (*secp256k1.PrivateKey, error) {
	counterPath, err := keysetPath.Derive(hdkeychain.HardenedKeyStart + counter)
	if err != nil {
		return nil, err
	}

	rPath, err := counterPath.Derive(hdkeychain.HardenedKeyStart + 1)
	if err != nil {
		return nil, err
	}

	return rPath.ECPrivKey()
}
