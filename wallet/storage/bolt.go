package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/crypto"
	bolt "go.etcd.io/bbolt"
)

const (
	proofsBucket   = "proofs"
	keysetsBucket  = "keysets"
	countersBucket = "counters"
	seedBucket     = "seed"
	seedKey        = "seed"
	mnemonicKey    = "mnemonic"
)

// Bolt is a Store backed by a single bbolt file.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) wallet.db under dir.
func OpenBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(filepath.Join(dir, "wallet.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: opening bolt db: %w", err)
	}

	b := &Bolt{db: db}
	if err := b.init(); err != nil {
		return nil, fmt.Errorf("storage: initializing bolt db: %w", err)
	}
	return b, nil
}

func (b *Bolt) init() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{proofsBucket, keysetsBucket, countersBucket, seedBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) SaveProofs(proofs cashu.Proofs) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(proofsBucket))
		for _, proof := range proofs {
			data, err := json.Marshal(proof)
			if err != nil {
				return fmt.Errorf("marshaling proof: %w", err)
			}
			if err := bucket.Put([]byte(proof.Secret), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Bolt) GetProofs() cashu.Proofs {
	proofs := cashu.Proofs{}
	b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(proofsBucket))
		return bucket.ForEach(func(k, v []byte) error {
			var proof cashu.Proof
			if err := json.Unmarshal(v, &proof); err != nil {
				return nil
			}
			proofs = append(proofs, proof)
			return nil
		})
	})
	return proofs
}

func (b *Bolt) GetProofsByKeysetId(id string) cashu.Proofs {
	proofs := cashu.Proofs{}
	for _, p := range b.GetProofs() {
		if p.Id == id {
			proofs = append(proofs, p)
		}
	}
	return proofs
}

func (b *Bolt) DeleteProofs(secrets []string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(proofsBucket))
		for _, secret := range secrets {
			if err := bucket.Delete([]byte(secret)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *Bolt) SaveKeyset(keyset *crypto.Keyset) error {
	data, err := json.Marshal(keyset)
	if err != nil {
		return fmt.Errorf("marshaling keyset: %w", err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(keysetsBucket)).Put([]byte(keyset.Id), data)
	})
}

func (b *Bolt) GetKeyset(id string) *crypto.Keyset {
	var keyset *crypto.Keyset
	b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(keysetsBucket)).Get([]byte(id))
		if data == nil {
			return nil
		}
		var k crypto.Keyset
		if err := json.Unmarshal(data, &k); err != nil {
			return nil
		}
		keyset = &k
		return nil
	})
	return keyset
}

func (b *Bolt) GetKeysets() []crypto.Keyset {
	keysets := []crypto.Keyset{}
	b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(keysetsBucket)).ForEach(func(k, v []byte) error {
			var keyset crypto.Keyset
			if err := json.Unmarshal(v, &keyset); err != nil {
				return nil
			}
			keysets = append(keysets, keyset)
			return nil
		})
	})
	return keysets
}

func (b *Bolt) GetCounter(keysetId string) uint32 {
	var counter uint32
	b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(countersBucket)).Get([]byte(keysetId))
		if len(data) == 4 {
			counter = binary.BigEndian.Uint32(data)
		}
		return nil
	})
	return counter
}

func (b *Bolt) IncrementCounter(keysetId string, by uint32) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(countersBucket))
		var current uint32
		if data := bucket.Get([]byte(keysetId)); len(data) == 4 {
			current = binary.BigEndian.Uint32(data)
		}
		next := make([]byte, 4)
		binary.BigEndian.PutUint32(next, current+by)
		return bucket.Put([]byte(keysetId), next)
	})
}

func (b *Bolt) SaveSeed(mnemonic string, seed []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(seedBucket))
		if err := bucket.Put([]byte(seedKey), seed); err != nil {
			return err
		}
		return bucket.Put([]byte(mnemonicKey), []byte(mnemonic))
	})
}

func (b *Bolt) GetSeed() []byte {
	var seed []byte
	b.db.View(func(tx *bolt.Tx) error {
		seed = tx.Bucket([]byte(seedBucket)).Get([]byte(seedKey))
		return nil
	})
	return seed
}

func (b *Bolt) GetMnemonic() string {
	var mnemonic string
	b.db.View(func(tx *bolt.Tx) error {
		mnemonic = string(tx.Bucket([]byte(seedBucket)).Get([]byte(mnemonicKey)))
		return nil
	})
	return mnemonic
}
