// Package storage persists a wallet's proofs, keysets and seed across
// restarts. Store is the interface the wallet package drives; Bolt is
// the on-disk implementation backed by go.etcd.io/bbolt.
package storage

import (
	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/crypto"
)

// Store is everything the wallet orchestrator needs from persistence.
// Proofs are keyed by secret, which is unique per proof; DeleteProofs
// takes the secrets of the proofs to remove.
type Store interface {
	SaveProofs(cashu.Proofs) error
	GetProofs() cashu.Proofs
	GetProofsByKeysetId(id string) cashu.Proofs
	DeleteProofs(secrets []string) error

	SaveKeyset(*crypto.Keyset) error
	GetKeyset(id string) *crypto.Keyset
	GetKeysets() []crypto.Keyset

	GetCounter(keysetId string) uint32
	IncrementCounter(keysetId string, by uint32) error

	SaveSeed(mnemonic string, seed []byte) error
	GetSeed() []byte
	GetMnemonic() string

	Close() error
}
