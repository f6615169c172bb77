package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	gresty "github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

var errChainHTTPError = errors.New("chain rpc http error")

// RPCError is the error object returned by the node inside a JSON-RPC
// response envelope.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ParseError marks a response that came back 200 but did not match the
// expected shape. Transient retries won't fix a persistent one; it likely
// means a schema mismatch worth reporting.
type ParseError struct {
	Method string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v", e.Method, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	Id      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// ChainClient talks JSON-RPC 2.0 to one chain node over HTTP.
type ChainClient struct {
	ChainName string

	client *gresty.Client
	nextId atomic.Int64
}

func NewChainClient(baseUrl, chainName string) (*ChainClient, error) {
	if baseUrl == "" {
		return nil, errors.New("chain rpc URL cannot be empty")
	}
	client := gresty.New()
	client.SetBaseURL(baseUrl)
	client.OnAfterResponse(func(client *gresty.Client, response *gresty.Response) error {
		statusCode := response.StatusCode()
		if statusCode >= http.StatusBadRequest {
			method := response.Request.Method
			url := response.Request.URL
			return fmt.Errorf("%d cannot %s %s: %w", statusCode, method, url, errChainHTTPError)
		}
		return nil
	})
	return &ChainClient{ChainName: chainName, client: client}, nil
}

// call performs one JSON-RPC request and decodes the result field into out.
func (c *ChainClient) call(ctx context.Context, method string, params []any, out any) error {
	req := &rpcRequest{
		Jsonrpc: "2.0",
		Id:      c.nextId.Add(1),
		Method:  method,
		Params:  params,
	}
	if params == nil {
		req.Params = []any{}
	}

	var envelope rpcResponse
	_, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&envelope).
		Post("/")
	if err != nil {
		log.Error("chain rpc request failed", "method", method, "err", err)
		return err
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if envelope.Result == nil {
		return &ParseError{Method: method, Err: errors.New("missing result field")}
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return &ParseError{Method: method, Err: err}
	}
	return nil
}

// GasPrice returns the node's legacy gas price suggestion in wei.
func (c *ChainClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, "eth_gasPrice", nil, &out); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

// MaxPriorityFeePerGas returns the suggested tip in wei. Nodes that predate
// EIP-1559 reject the method; callers fall back to the legacy fee shape.
func (c *ChainClient) MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, "eth_maxPriorityFeePerGas", nil, &out); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

type feeHistoryDTO struct {
	OldestBlock   *hexutil.Big   `json:"oldestBlock"`
	BaseFeePerGas []*hexutil.Big `json:"baseFeePerGas"`
	GasUsedRatio  []float64      `json:"gasUsedRatio"`
}

// BaseFee returns the next block's base fee per gas from eth_feeHistory.
// The last baseFeePerGas entry is the node's projection for the pending
// block.
func (c *ChainClient) BaseFee(ctx context.Context) (*big.Int, error) {
	var out feeHistoryDTO
	if err := c.call(ctx, "eth_feeHistory", []any{hexutil.Uint64(1), "latest", []int{}}, &out); err != nil {
		return nil, err
	}
	if len(out.BaseFeePerGas) == 0 {
		return nil, &ParseError{Method: "eth_feeHistory", Err: errors.New("empty baseFeePerGas")}
	}
	return out.BaseFeePerGas[len(out.BaseFeePerGas)-1].ToInt(), nil
}

// TransactionByHash returns nil when the node does not know the hash.
func (c *ChainClient) TransactionByHash(ctx context.Context, hash common.Hash) (*Transaction, error) {
	var out *transactionDTO
	if err := c.call(ctx, "eth_getTransactionByHash", []any{hash}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return out.toTransaction()
}

// TransactionReceipt returns nil while the transaction is still pending.
func (c *ChainClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	var out *receiptDTO
	if err := c.call(ctx, "eth_getTransactionReceipt", []any{hash}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return out.toReceipt()
}

// Call runs eth_call against latest for read-only contract views (balance,
// decimals, symbol).
func (c *ChainClient) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	arg := map[string]any{
		"to":   to,
		"data": hexutil.Bytes(data),
	}
	var out hexutil.Bytes
	if err := c.call(ctx, "eth_call", []any{arg, "latest"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendRawTransaction broadcasts a signed transaction and returns its hash.
func (c *ChainClient) SendRawTransaction(ctx context.Context, rawTx hexutil.Bytes) (common.Hash, error) {
	var out common.Hash
	if err := c.call(ctx, "eth_sendRawTransaction", []any{rawTx}, &out); err != nil {
		return common.Hash{}, err
	}
	return out, nil
}
