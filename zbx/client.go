package zbx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal Zabbix JSON-RPC API client. It only implements the
// calls needed to wire Telegram alert delivery into Zabbix.
type Client struct {
	url    string
	client *http.Client
	auth   string
}

func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      uint64 `json:"id"`
	Auth    string `json:"auth,omitempty"`
}

type rpcError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// rpc method makes a single JSON-RPC call and decodes the result into the
// given target, which may be nil when the caller does not care about it.
func (c *Client) rpc(ctx context.Context, method string, params, result any) error {
	// encode the request body and make the request
	requestBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
		Auth:    c.auth,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(requestBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error calling zabbix api: %w", err)
	}
	// read and parse the response body
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading zabbix api response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zabbix api http error %d: %s", resp.StatusCode, string(body))
	}
	var parsed rpcResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("error unmarshalling zabbix api response %q: %w", string(body), err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("zabbix api error %d: %s %s", parsed.Error.Code, parsed.Error.Message, string(parsed.Error.Data))
	}
	if parsed.Result == nil {
		return fmt.Errorf("missing result in zabbix api response")
	}
	if result != nil {
		if err := json.Unmarshal(parsed.Result, result); err != nil {
			return fmt.Errorf("error unmarshalling zabbix api result: %w", err)
		}
	}
	return nil
}

// Login method authenticates against the Zabbix API and stores the session
// token for the following calls. Zabbix 6.4+ expects {"username","password"}
// while older versions accept {"user","password"}, so it tries the new
// parameter name first and falls back on an invalid-params error.
func (c *Client) Login(ctx context.Context, user, password string) error {
	var token string
	err := c.rpc(ctx, "user.login", map[string]string{"username": user, "password": password}, &token)
	if err == nil {
		c.auth = token
		return nil
	}
	if !strings.Contains(err.Error(), "Invalid params") &&
		!strings.Contains(err.Error(), `unexpected parameter "username"`) {
		return err
	}
	if err := c.rpc(ctx, "user.login", map[string]string{"user": user, "password": password}, &token); err != nil {
		return err
	}
	c.auth = token
	return nil
}
