package claim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/satsurance/pool/crypto"
	nativecommon "github.com/satsurance/pool/native/common"
)

// HTTPSlashCaller dispatches execute_claim's slash call to a Pool Engine
// process over HTTP, signing each request with a freshly issued
// short-lived executor-principal JWT. It satisfies pool.SlashCaller.
type HTTPSlashCaller struct {
	BaseURL           string
	ExecutorPrincipal string
	JWTSecret         []byte
	TokenTTL          time.Duration
	Clock             nativecommon.Clock
	HTTPClient        *http.Client
}

type slashRequestBody struct {
	Caller   string `json:"caller"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type slashResponseBody struct {
	Slashed string `json:"slashed"`
}

// Slash issues the authenticated HTTP call and parses the delivered
// slashed amount from the response body.
func (c *HTTPSlashCaller) Slash(ctx context.Context, caller, receiver crypto.Address, amount *big.Int) (*big.Int, error) {
	ttl := c.TokenTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	now := time.Now()
	if c.Clock != nil {
		now = c.Clock.Now()
	}
	token, err := nativecommon.IssueExecutorToken(c.JWTSecret, c.ExecutorPrincipal, ttl, now)
	if err != nil {
		return nil, fmt.Errorf("claim: issuing executor token: %w", err)
	}

	body, err := json.Marshal(slashRequestBody{
		Caller:   caller.String(),
		Receiver: receiver.String(),
		Amount:   amount.String(),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/slash", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claim: slash call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("claim: slash call returned status %d", resp.StatusCode)
	}

	var out slashResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("claim: decoding slash response: %w", err)
	}
	slashed, ok := new(big.Int).SetString(out.Slashed, 10)
	if !ok {
		return nil, fmt.Errorf("claim: invalid slashed amount in response")
	}
	return slashed, nil
}
