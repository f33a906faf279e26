package mint

// Transport is everything a Wallet needs from a mint, kept as an
// interface so tests can drive a wallet against a fake mint instead of
// a live HTTP server.
type Transport interface {
	GetKeys() (*GetKeysResponse, error)
	GetKeysetKeys(id string) (*GetKeysResponse, error)
	GetKeysets() (*GetKeysetsResponse, error)
	GetInfo() (*Info, error)

	PostMintQuote(PostMintQuoteRequest) (*PostMintQuoteResponse, error)
	GetMintQuoteState(quoteId string) (*PostMintQuoteResponse, error)
	PostMint(PostMintRequest) (*PostMintResponse, error)

	PostMeltQuote(PostMeltQuoteRequest) (*PostMeltQuoteResponse, error)
	PostMelt(PostMeltRequest) (*PostMeltResponse, error)

	PostSwap(PostSwapRequest) (*PostSwapResponse, error)
	PostCheckState(PostCheckStateRequest) (*PostCheckStateResponse, error)
	PostRestore(PostRestoreRequest) (*PostRestoreResponse, error)
}
