package pool

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/satsurance/pool/crypto"
	nativecommon "github.com/satsurance/pool/native/common"
)

// slashRequest is the wire body posted by the Claim Engine's HTTPSlashCaller.
type slashRequest struct {
	Caller   string `json:"caller"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type slashResponse struct {
	Slashed string `json:"slashed"`
}

// SlashHandler exposes slash over HTTP, authenticating the caller via an
// HS256 executor-principal JWT (Authorization: Bearer <token>) whose
// subject must equal executorPrincipal. This authenticates the single
// permitted caller of slash (the Claim Engine) rather than an HTTP
// end-user.
func SlashHandler(engine *Engine, jwtSecret []byte, executorPrincipal string, clock nativecommon.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		now := time.Now()
		if clock != nil {
			now = clock.Now()
		}
		if err := nativecommon.VerifyExecutorToken(jwtSecret, token, executorPrincipal, now); err != nil {
			http.Error(w, "invalid executor token", http.StatusUnauthorized)
			return
		}

		var req slashRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		callerAddr, err := crypto.DecodeAddress(req.Caller)
		if err != nil {
			http.Error(w, "invalid caller", http.StatusBadRequest)
			return
		}
		receiverAddr, err := crypto.DecodeAddress(req.Receiver)
		if err != nil {
			http.Error(w, "invalid receiver", http.StatusBadRequest)
			return
		}
		amount, ok := new(big.Int).SetString(req.Amount, 10)
		if !ok {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}

		slashed, err := engine.Slash(r.Context(), callerAddr, receiverAddr, amount)
		if err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(slashResponse{Slashed: slashed.String()})
	}
}
