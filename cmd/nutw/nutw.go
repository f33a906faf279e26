package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ecashkit/wallet/cashu"
	"github.com/ecashkit/wallet/mint"
	"github.com/ecashkit/wallet/wallet"
	"github.com/ecashkit/wallet/wallet/storage"
	"github.com/joho/godotenv"
	"github.com/tyler-smith/go-bip39"
	"github.com/urfave/cli/v2"
)

var nutw *wallet.Wallet

func walletDir() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	path := filepath.Join(homedir, ".ecashkit", "wallet")
	if err := os.MkdirAll(path, 0700); err != nil {
		log.Fatal(err)
	}
	return path
}

func mintURL() string {
	if url := os.Getenv("MINT_URL"); len(url) > 0 {
		return url
	}
	return "http://127.0.0.1:3338"
}

// setupWallet opens the on-disk store and brings up a Wallet against
// mintURL. A brand new store gets a freshly generated mnemonic so the
// wallet is deterministic from its very first run.
func setupWallet(ctx *cli.Context) error {
	dir := walletDir()
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	store, err := storage.OpenBolt(dir)
	if err != nil {
		return fmt.Errorf("opening wallet store: %w", err)
	}

	transport := mint.NewHTTPClient(mintURL())

	mnemonic := store.GetMnemonic()
	if len(mnemonic) == 0 {
		mnemonic, err = newMnemonic()
		if err != nil {
			return err
		}
		fmt.Printf("new wallet mnemonic (write this down): %v\n\n", mnemonic)
	}

	nutw, err = wallet.NewDeterministic(transport, store, mintURL(), cashu.Sat, mnemonic)
	return err
}

func newMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("generating entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

func main() {
	app := &cli.App{
		Name:  "nutw",
		Usage: "cashu wallet",
		Commands: []*cli.Command{
			balanceCmd,
			mintCmd,
			sendCmd,
			receiveCmd,
			payCmd,
			mnemonicCmd,
			restoreCmd,
			decodeCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var balanceCmd = &cli.Command{
	Name:   "balance",
	Usage:  "Wallet balance",
	Before: setupWallet,
	Action: getBalance,
}

func getBalance(ctx *cli.Context) error {
	fmt.Printf("mint: %v\n", nutw.MintURL())
	fmt.Printf("balance: %v sats\n", nutw.Balance())
	return nil
}

var receiveCmd = &cli.Command{
	Name:      "receive",
	Usage:     "Receive token",
	ArgsUsage: "[TOKEN]",
	Before:    setupWallet,
	Action:    receive,
}

func receive(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		return printErr(errors.New("token not provided"))
	}

	token, err := cashu.DecodeToken(args.First())
	if err != nil {
		return printErr(err)
	}

	result, err := nutw.Receive(token)
	if err != nil {
		return printErr(err)
	}
	for _, e := range result.Errors {
		fmt.Printf("entry from %v rejected: %v\n", e.Mint, e.Error)
	}
	fmt.Printf("%v sats received\n", result.Amount)
	return nil
}

const invoiceFlag = "invoice"

var mintCmd = &cli.Command{
	Name:      "mint",
	Usage:     "Request mint quote, or redeem one already paid",
	ArgsUsage: "[AMOUNT]",
	Before:    setupWallet,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  invoiceFlag,
			Usage: "redeem proofs for a previously requested quote id, for AMOUNT",
		},
	},
	Action: mintAction,
}

func mintAction(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		return printErr(errors.New("specify an amount to mint"))
	}
	amount, err := strconv.ParseUint(args.First(), 10, 64)
	if err != nil {
		return printErr(errors.New("invalid amount"))
	}

	if ctx.IsSet(invoiceFlag) {
		return redeemMintQuote(ctx.String(invoiceFlag), amount)
	}

	quote, err := nutw.RequestMint(amount)
	if err != nil {
		return printErr(err)
	}

	fmt.Printf("invoice: %v\n\n", quote.Request)
	fmt.Printf("after paying it, redeem the ecash with: mint %v --invoice %v\n", amount, quote.Quote)
	return nil
}

func redeemMintQuote(quoteId string, amount uint64) error {
	state, err := nutw.MintQuoteState(quoteId)
	if err != nil {
		return printErr(err)
	}
	if !state.Paid {
		return printErr(errors.New("quote not paid yet"))
	}

	proofs, err := nutw.MintTokens(quoteId, amount, nil)
	if err != nil {
		return printErr(err)
	}
	fmt.Printf("%v sats successfully minted\n", proofs.Amount())
	return nil
}

var sendCmd = &cli.Command{
	Name:      "send",
	Usage:     "Generates a token for the specified amount",
	ArgsUsage: "[AMOUNT]",
	Before:    setupWallet,
	Action:    send,
}

func send(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		return printErr(errors.New("specify an amount to send"))
	}
	amount, err := strconv.ParseUint(args.First(), 10, 64)
	if err != nil {
		return printErr(err)
	}

	proofs, err := nutw.Send(amount, nil)
	if err != nil {
		return printErr(err)
	}

	token := cashu.NewToken(proofs, nutw.MintURL(), cashu.Sat)
	encoded, err := cashu.EncodeTokenV4(token)
	if err != nil {
		return printErr(err)
	}
	fmt.Println(encoded)
	return nil
}

var payCmd = &cli.Command{
	Name:      "pay",
	Usage:     "Pay a lightning invoice",
	ArgsUsage: "[INVOICE]",
	Before:    setupWallet,
	Action:    pay,
}

func pay(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		return printErr(errors.New("specify a lightning invoice to pay"))
	}

	quote, err := nutw.MeltQuote(args.First())
	if err != nil {
		return printErr(err)
	}

	result, err := nutw.MeltTokens(quote)
	if err != nil {
		return printErr(err)
	}

	fmt.Printf("invoice paid: %v\n", result.Paid)
	if len(result.Change) > 0 {
		fmt.Printf("%v sats returned as change\n", result.Change.Amount())
	}
	return nil
}

var mnemonicCmd = &cli.Command{
	Name:   "mnemonic",
	Usage:  "Show the wallet's mnemonic",
	Before: setupWallet,
	Action: showMnemonic,
}

func showMnemonic(ctx *cli.Context) error {
	fmt.Printf("mnemonic: %v\n", nutw.Mnemonic())
	return nil
}

var restoreCmd = &cli.Command{
	Name:   "restore",
	Usage:  "Restore a wallet from its mnemonic",
	Action: restore,
}

func restore(ctx *cli.Context) error {
	fmt.Print("enter mnemonic: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		log.Fatal("error reading input, please try again")
	}
	mnemonic := line[:len(line)-1]

	dir := walletDir()
	store, err := storage.OpenBolt(dir)
	if err != nil {
		return printErr(fmt.Errorf("opening wallet store: %w", err))
	}
	defer store.Close()

	transport := mint.NewHTTPClient(mintURL())
	proofs, err := wallet.Restore(transport, store, mintURL(), mnemonic)
	if err != nil {
		return printErr(fmt.Errorf("restoring wallet: %w", err))
	}

	fmt.Printf("restored proofs for amount of: %v\n", proofs.Amount())
	return nil
}

var decodeCmd = &cli.Command{
	Name:      "decode",
	ArgsUsage: "[TOKEN]",
	Usage:     "Decode token",
	Action:    decode,
}

func decode(ctx *cli.Context) error {
	args := ctx.Args()
	if args.Len() < 1 {
		return printErr(errors.New("token not provided"))
	}

	token, err := cashu.DecodeToken(args.First())
	if err != nil {
		return printErr(err)
	}

	jsonToken, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return printErr(err)
	}

	fmt.Println(string(jsonToken))
	return nil
}

func printErr(msg error) error {
	fmt.Println(msg.Error())
	return msg
}
