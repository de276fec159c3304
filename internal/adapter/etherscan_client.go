package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// EtherscanClient fetches transaction history from the Etherscan API. The
// free tier allows 5 requests per second; a shared limiter keeps all callers
// under that.
type EtherscanClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewEtherscanClient creates a client against the public Etherscan endpoint
func NewEtherscanClient(apiKey string) *EtherscanClient {
	return &EtherscanClient{
		apiKey:  apiKey,
		baseURL: "https://api.etherscan.io/api",
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
	}
}

// NewEtherscanClientWithBaseURL creates a client against a custom endpoint,
// used by tests
func NewEtherscanClientWithBaseURL(apiKey, baseURL string) *EtherscanClient {
	c := NewEtherscanClient(apiKey)
	c.baseURL = baseURL
	return c
}

// EtherscanTransaction is one normal transaction record. Etherscan returns
// every numeric field as a string.
type EtherscanTransaction struct {
	Hash      string `json:"hash"`
	TimeStamp string `json:"timeStamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	IsError   string `json:"isError"`
}

// EtherscanTokenTransfer is one ERC20 transfer record
type EtherscanTokenTransfer struct {
	Hash            string `json:"hash"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
}

// Time converts the record's string timestamp
func (t EtherscanTransaction) Time() time.Time {
	sec, _ := strconv.ParseInt(t.TimeStamp, 10, 64)
	return time.Unix(sec, 0).UTC()
}

// Time converts the record's string timestamp
func (t EtherscanTokenTransfer) Time() time.Time {
	sec, _ := strconv.ParseInt(t.TimeStamp, 10, 64)
	return time.Unix(sec, 0).UTC()
}

type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// SortOrder selects the direction of a transaction listing
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// Transactions lists normal transactions for an address. A "No transactions
// found" response is returned as an empty slice, not an error.
func (c *EtherscanClient) Transactions(ctx context.Context, address string, sort SortOrder, limit int) ([]EtherscanTransaction, error) {
	params := url.Values{
		"module":  {"account"},
		"action":  {"txlist"},
		"address": {address},
		"sort":    {string(sort)},
		"page":    {"1"},
		"offset":  {strconv.Itoa(limit)},
	}

	var txs []EtherscanTransaction
	if err := c.doRequest(ctx, params, &txs); err != nil {
		return nil, fmt.Errorf("etherscan txlist: %w", err)
	}
	return txs, nil
}

// TokenTransfers lists ERC20 transfers touching an address
func (c *EtherscanClient) TokenTransfers(ctx context.Context, address string, sort SortOrder, limit int) ([]EtherscanTokenTransfer, error) {
	params := url.Values{
		"module":  {"account"},
		"action":  {"tokentx"},
		"address": {address},
		"sort":    {string(sort)},
		"page":    {"1"},
		"offset":  {strconv.Itoa(limit)},
	}

	var transfers []EtherscanTokenTransfer
	if err := c.doRequest(ctx, params, &transfers); err != nil {
		return nil, fmt.Errorf("etherscan tokentx: %w", err)
	}
	return transfers, nil
}

func (c *EtherscanClient) doRequest(ctx context.Context, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope etherscanEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	// status "0" covers both hard errors and the empty-result case
	if envelope.Status != "1" {
		if strings.Contains(envelope.Message, "No transactions found") {
			return nil
		}
		return fmt.Errorf("api error: %s", envelope.Message)
	}

	return json.Unmarshal(envelope.Result, out)
}
