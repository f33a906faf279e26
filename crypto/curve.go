// Package crypto implements the secp256k1 primitives and the blind
// Diffie-Hellman key exchange (BDHKE) the wallet uses to mint, swap and
// unblind ecash proofs.
package crypto

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// domainSeparator is prepended to every message hashed onto the curve.
// It must match the mint exactly; see NUT-00.
var domainSeparator = []byte("Secp256k1_HashToCurve_Cashu_")

// HashToCurve deterministically maps a message to a point on the curve
// with an unknown discrete log. Each iteration hashes
// DOMAIN_SEPARATOR||msg||counter, reinterprets the digest as the
// x-coordinate of a compressed point with prefix 0x02, and increments
// counter until that decodes to a valid point.
func HashToCurve(message []byte) *secp256k1.PublicKey {
	prefixLen := len(domainSeparator) + len(message)
	buf := make([]byte, prefixLen+4)
	copy(buf, domainSeparator)
	copy(buf[len(domainSeparator):], message)

	for counter := uint32(0); ; counter++ {
		binary.LittleEndian.PutUint32(buf[prefixLen:], counter)

		hash := sha256.Sum256(buf)
		candidate := append([]byte{0x02}, hash[:]...)
		if point, err := secp256k1.ParsePubKey(candidate); err == nil {
			return point
		}
	}
}

// addPoints returns a + b on the curve.
func addPoints(a, b *secp256k1.PublicKey) *secp256k1.PublicKey {
	var aj, bj, sum secp256k1.JacobianPoint
	a.AsJacobian(&aj)
	b.AsJacobian(&bj)
	secp256k1.AddNonConst(&aj, &bj, &sum)
	sum.ToAffine()
	return secp256k1.NewPublicKey(&sum.X, &sum.Y)
}

// subtractPoints returns a - b on the curve.
func subtractPoints(a, b *secp256k1.PublicKey) *secp256k1.PublicKey {
	var negb secp256k1.ModNScalar
	negb.SetInt(1)
	negb.Negate()

	var bpoint, negbpoint secp256k1.JacobianPoint
	b.AsJacobian(&bpoint)
	secp256k1.ScalarMultNonConst(&negb, &bpoint, &negbpoint)
	negbpoint.ToAffine()
	negB := secp256k1.NewPublicKey(&negbpoint.X, &negbpoint.Y)

	return addPoints(a, negB)
}

// scalarMult returns k*P on the curve.
func scalarMult(k *secp256k1.PrivateKey, p *secp256k1.PublicKey) *secp256k1.PublicKey {
	var pj, resj secp256k1.JacobianPoint
	p.AsJacobian(&pj)
	secp256k1.ScalarMultNonConst(&k.Key, &pj, &resj)
	resj.ToAffine()
	return secp256k1.NewPublicKey(&resj.X, &resj.Y)
}

// scalarBaseMult returns k*G.
func scalarBaseMult(k *secp256k1.PrivateKey) *secp256k1.PublicKey {
	return k.PubKey()
}

func hashSHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}
