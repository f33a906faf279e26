package nut13

import (
	"testing"

	"github.com/tyler-smith/go-bip39"
)

func testSeed(t *testing.T) []byte {
	t.Helper()
	mnemonic := "half depart obvious quality work element tank gorilla view sugar picture humble"
	if !bip39.IsMnemonicValid(mnemonic) {
		t.Fatal("test mnemonic is not valid bip-39")
	}
	return bip39.NewSeed(mnemonic, "")
}

func TestDeriveSecretIsDeterministic(t *testing.T) {
	seed := testSeed(t)
	master, err := MasterKeyFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}

	keysetPath, err := DeriveKeysetPath(master, "009a1f293253e41e")
	if err != nil {
		t.Fatal(err)
	}

	s1, err := DeriveSecret(keysetPath, 0)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := DeriveSecret(keysetPath, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Errorf("DeriveSecret not deterministic: %s != %s", s1, s2)
	}
}

func TestDeriveSecretVariesByCounter(t *testing.T) {
	seed := testSeed(t)
	master, err := MasterKeyFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}
	keysetPath, err := DeriveKeysetPath(master, "009a1f293253e41e")
	if err != nil {
		t.Fatal(err)
	}

	s0, err := DeriveSecret(keysetPath, 0)
	if err != nil {
		t.Fatal(err)
	}
	s1, err := DeriveSecret(keysetPath, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s0 == s1 {
		t.Error("DeriveSecret should differ across counters")
	}
}

func TestDeriveKeysetPathVariesByKeysetId(t *testing.T) {
	seed := testSeed(t)
	master, err := MasterKeyFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}

	pathA, err := DeriveKeysetPath(master, "009a1f293253e41e")
	if err != nil {
		t.Fatal(err)
	}
	pathB, err := DeriveKeysetPath(master, "00f9e2a11a6d8f72")
	if err != nil {
		t.Fatal(err)
	}

	secretA, err := DeriveSecret(pathA, 0)
	if err != nil {
		t.Fatal(err)
	}
	secretB, err := DeriveSecret(pathB, 0)
	if err != nil {
		t.Fatal(err)
	}
	if secretA == secretB {
		t.Error("DeriveSecret should differ across keysets")
	}
}

func TestDeriveBlindingFactorIsDeterministic(t *testing.T) {
	seed := testSeed(t)
	master, err := MasterKeyFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}
	keysetPath, err := DeriveKeysetPath(master, "009a1f293253e41e")
	if err != nil {
		t.Fatal(err)
	}

	r1, err := DeriveBlindingFactor(keysetPath, 0)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := DeriveBlindingFactor(keysetPath, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !r1.PubKey().IsEqual(r2.PubKey()) {
		t.Error("DeriveBlindingFactor not deterministic")
	}
}

func TestMasterKeyFromSeedDeterministic(t *testing.T) {
	seed := testSeed(t)
	m1, err := MasterKeyFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := MasterKeyFromSeed(seed)
	if err != nil {
		t.Fatal(err)
	}
	if m1.String() != m2.String() {
		t.Error("MasterKeyFromSeed not deterministic")
	}
}
