package wallet

import (
	"testing"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/crypto"
	"github.com/ecashkit/wallet/wallet/storage"
)

const testMnemonic = "half depart obvious quality work element tank gorilla view sugar picture humble"

func newTestWallet(t *testing.T) (*Wallet, *fakeMint) {
	t.Helper()
	mint := newFakeMint()
	store, err := storage.OpenBolt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	w, err := NewDeterministic(mint, store, "https://mint.example.com", cashu.Sat, testMnemonic)
	if err != nil {
		t.Fatalf("NewDeterministic: %v", err)
	}
	return w, mint
}

func mintAmount(t *testing.T, w *Wallet, amount uint64) cashu.Proofs {
	t.Helper()
	quote, err := w.RequestMint(amount)
	if err != nil {
		t.Fatalf("RequestMint: %v", err)
	}
	proofs, err := w.MintTokens(quote.Quote, amount, nil)
	if err != nil {
		t.Fatalf("MintTokens: %v", err)
	}
	return proofs
}

func TestMintTokens(t *testing.T) {
	w, _ := newTestWallet(t)

	proofs := mintAmount(t, w, 11)
	if proofs.Amount() != 11 {
		t.Fatalf("minted amount = %d, want 11", proofs.Amount())
	}
	if w.Balance() != 11 {
		t.Fatalf("balance = %d, want 11", w.Balance())
	}

	wantSplit := []uint64{1, 2, 8}
	if len(proofs) != len(wantSplit) {
		t.Fatalf("got %d proofs, want %d", len(proofs), len(wantSplit))
	}
	for i, p := range proofs {
		if p.Amount != wantSplit[i] {
			t.Errorf("proof %d amount = %d, want %d", i, p.Amount, wantSplit[i])
		}
	}
}

func TestSendExactMatch(t *testing.T) {
	w, _ := newTestWallet(t)
	mintAmount(t, w, 8) // one proof of amount 8

	sent, err := w.Send(8, nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent.Amount() != 8 {
		t.Fatalf("sent amount = %d, want 8", sent.Amount())
	}
	if w.Balance() != 0 {
		t.Fatalf("balance after exact send = %d, want 0", w.Balance())
	}
}

func TestSendRequiresSwap(t *testing.T) {
	w, _ := newTestWallet(t)
	mintAmount(t, w, 8) // single proof of 8, no way to make 5 exactly without a swap

	sent, err := w.Send(5, nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent.Amount() != 5 {
		t.Fatalf("sent amount = %d, want 5", sent.Amount())
	}
	if w.Balance() != 3 {
		t.Fatalf("change balance = %d, want 3", w.Balance())
	}
}

func TestSendPreferenceForcesSwap(t *testing.T) {
	w, _ := newTestWallet(t)
	mintAmount(t, w, 2)
	mintAmount(t, w, 2) // two proofs of amount 2, total already equals the target

	pref := []cashu.Preference{{Amount: 1, Count: 4}}
	sent, err := w.Send(4, pref)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sent) != 4 {
		t.Fatalf("got %d proofs, want 4", len(sent))
	}
	for i, p := range sent {
		if p.Amount != 1 {
			t.Errorf("proof %d amount = %d, want 1", i, p.Amount)
		}
	}
	if w.Balance() != 0 {
		t.Fatalf("balance after full preference send = %d, want 0", w.Balance())
	}
}

func TestSendInsufficientFunds(t *testing.T) {
	w, _ := newTestWallet(t)
	mintAmount(t, w, 4)

	if _, err := w.Send(10, nil); err != cashu.ErrInsufficientFunds {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestReceive(t *testing.T) {
	// sender and receiver share one fake mint, matching how a real token
	// only redeems against the mint that actually signed it.
	mint := newFakeMint()
	mintURL := "https://mint.example.com"

	senderStore, err := storage.OpenBolt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	t.Cleanup(func() { senderStore.Close() })
	sender, err := NewDeterministic(mint, senderStore, mintURL, cashu.Sat, testMnemonic)
	if err != nil {
		t.Fatalf("NewDeterministic: %v", err)
	}

	receiverStore, err := storage.OpenBolt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	t.Cleanup(func() { receiverStore.Close() })
	otherMnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	receiver, err := NewDeterministic(mint, receiverStore, mintURL, cashu.Sat, otherMnemonic)
	if err != nil {
		t.Fatalf("NewDeterministic: %v", err)
	}

	proofs := mintAmount(t, sender, 6)
	tok := cashu.Token{
		Token: []cashu.TokenEntry{{Mint: sender.MintURL(), Proofs: proofs}},
		Unit:  cashu.Sat.String(),
	}

	result, err := receiver.Receive(tok)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected receive errors: %+v", result.Errors)
	}
	if result.Amount != 6 {
		t.Fatalf("received amount = %d, want 6", result.Amount)
	}
	if receiver.Balance() != 6 {
		t.Fatalf("receiver balance = %d, want 6", receiver.Balance())
	}
}

func TestReceiveRejectsForeignMint(t *testing.T) {
	w, _ := newTestWallet(t)

	tok := cashu.Token{
		Token: []cashu.TokenEntry{{
			Mint:   "https://other-mint.example.com",
			Proofs: cashu.Proofs{{Amount: 1, Id: "00deadbeefdeadbe", Secret: "s", C: ""}},
		}},
	}

	result, err := w.Receive(tok)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if result.Amount != 0 {
		t.Fatalf("amount = %d, want 0", result.Amount)
	}
}

func TestMeltTokensWithChange(t *testing.T) {
	w, mint := newTestWallet(t)
	mintAmount(t, w, 16)

	quote, err := w.MeltQuote("lnbc1...")
	if err != nil {
		t.Fatalf("MeltQuote: %v", err)
	}
	if quote.FeeReserve == 0 {
		t.Fatal("fakeMint quote should carry a non-zero fee reserve for this test to be meaningful")
	}

	result, err := w.MeltTokens(quote)
	if err != nil {
		t.Fatalf("MeltTokens: %v", err)
	}
	if !result.Paid {
		t.Fatal("expected melt to report paid")
	}

	spent := quote.Amount + quote.FeeReserve
	wantBalance := 16 - spent + result.Change.Amount()
	if w.Balance() != wantBalance {
		t.Errorf("balance after melt = %d, want %d", w.Balance(), wantBalance)
	}

	_ = mint // keysetId etc already exercised through the transport calls above
}

func TestCheckSpent(t *testing.T) {
	w, mint := newTestWallet(t)
	proofs := mintAmount(t, w, 4)

	spent, err := w.CheckSpent(proofs)
	if err != nil {
		t.Fatalf("CheckSpent: %v", err)
	}
	if len(spent) != 0 {
		t.Fatalf("expected no proofs reported spent yet, got %d", len(spent))
	}

	mint.mu.Lock()
	for _, p := range proofs {
		y := cashu.EncodePoint(crypto.HashToCurve([]byte(p.Secret)))
		mint.spent[y] = true
	}
	mint.mu.Unlock()

	spent, err = w.CheckSpent(proofs)
	if err != nil {
		t.Fatalf("CheckSpent: %v", err)
	}
	if len(spent) != len(proofs) {
		t.Fatalf("expected all %d proofs reported spent, got %d", len(proofs), len(spent))
	}
	if w.Balance() != 0 {
		t.Fatalf("balance after all proofs spent = %d, want 0", w.Balance())
	}
}

func TestRestore(t *testing.T) {
	mint := newFakeMint()
	mintURL := "https://mint.example.com"

	sourceStore, err := storage.OpenBolt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	source, err := NewDeterministic(mint, sourceStore, mintURL, cashu.Sat, testMnemonic)
	if err != nil {
		t.Fatalf("NewDeterministic: %v", err)
	}
	mintAmount(t, source, 11)  // counters 0,1,2
	mintAmount(t, source, 16)  // counter 3
	sourceStore.Close()

	restoreStore, err := storage.OpenBolt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	t.Cleanup(func() { restoreStore.Close() })

	restored, err := Restore(mint, restoreStore, mintURL, testMnemonic)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Amount() != 27 {
		t.Fatalf("restored amount = %d, want 27", restored.Amount())
	}
}
