package mint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ecashkit/wallet/cashu"
)

// HTTPClient is the net/http-backed Transport a Wallet uses against a
// real mint.
type HTTPClient struct {
	mintURL string
	client  *http.Client
}

// NewHTTPClient returns a Transport bound to mintURL, e.g.
// "https://mint.example.com". mintURL must not have a trailing slash.
func NewHTTPClient(mintURL string) *HTTPClient {
	return &HTTPClient{
		mintURL: mintURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) GetInfo() (*Info, error) {
	var info Info
	if err := c.get("/v1/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *HTTPClient) GetKeys() (*GetKeysResponse, error) {
	var res GetKeysResponse
	if err := c.get("/v1/keys", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetKeysetKeys(id string) (*GetKeysResponse, error) {
	var res GetKeysResponse
	if err := c.get("/v1/keys/"+id, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetKeysets() (*GetKeysetsResponse, error) {
	var res GetKeysetsResponse
	if err := c.get("/v1/keysets", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) PostMintQuote(req PostMintQuoteRequest) (*PostMintQuoteResponse, error) {
	var res PostMintQuoteResponse
	if err := c.post("/v1/mint/quote/bolt11", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) GetMintQuoteState(quoteId string) (*PostMintQuoteResponse, error) {
	var res PostMintQuoteResponse
	if err := c.get("/v1/mint/quote/bolt11/"+quoteId, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) PostMint(req PostMintRequest) (*PostMintResponse, error) {
	var res PostMintResponse
	if err := c.post("/v1/mint/bolt11", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) PostMeltQuote(req PostMeltQuoteRequest) (*PostMeltQuoteResponse, error) {
	var res PostMeltQuoteResponse
	if err := c.post("/v1/melt/quote/bolt11", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) PostMelt(req PostMeltRequest) (*PostMeltResponse, error) {
	var res PostMeltResponse
	if err := c.post("/v1/melt/bolt11", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) PostSwap(req PostSwapRequest) (*PostSwapResponse, error) {
	var res PostSwapResponse
	if err := c.post("/v1/swap", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) PostCheckState(req PostCheckStateRequest) (*PostCheckStateResponse, error) {
	var res PostCheckStateResponse
	if err := c.post("/v1/checkstate", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) PostRestore(req PostRestoreRequest) (*PostRestoreResponse, error) {
	var res PostRestoreResponse
	if err := c.post("/v1/restore", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) get(path string, out any) error {
	resp, err := c.client.Get(c.mintURL + path)
	if err != nil {
		return fmt.Errorf("mint: request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := parseResponse(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("mint: decoding response from %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) post(path string, in, out any) error {
	reqBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("mint: encoding request to %s: %w", path, err)
	}

	resp, err := c.client.Post(c.mintURL+path, "application/json", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("mint: request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := parseResponse(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("mint: decoding response from %s: %w", path, err)
	}
	return nil
}

func parseResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mint: reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest {
		var mintErr cashu.MintError
		if err := json.Unmarshal(body, &mintErr); err != nil {
			return nil, fmt.Errorf("mint: decoding error response: %w", err)
		}
		return nil, &mintErr
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mint: unexpected status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}
