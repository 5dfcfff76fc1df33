package claim

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/satsurance/pool/crypto"
)

type addClaimRequest struct {
	Proposer       string `json:"proposer"`
	Receiver       string `json:"receiver"`
	Amount         string `json:"amount"`
	PoolCanisterID string `json:"poolCanisterId"`
	Description    string `json:"description"`
}

type actorRequest struct {
	Actor string `json:"actor"`
}

type approverRequest struct {
	Caller   string `json:"caller"`
	Approver string `json:"approver"`
}

func decodeAddr(w http.ResponseWriter, field, raw string) (crypto.Address, bool) {
	addr, err := crypto.DecodeAddress(raw)
	if err != nil {
		http.Error(w, "invalid "+field, http.StatusBadRequest)
		return crypto.Address{}, false
	}
	return addr, true
}

func writeClaim(w http.ResponseWriter, c *Claim, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c)
}

func claimIDFromPath(prefix, path string) (uint64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Handlers exposes the Claim Engine's lifecycle operations over a plain
// HTTP+JSON debug/admin surface. Production deployments would authenticate
// callers (owner/approver/proposer) the same way the Pool Engine
// authenticates slash, omitted here since each operation already
// authorizes its caller argument against governance state.
func (e *Engine) Handlers() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/claims", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req addClaimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		proposer, ok := decodeAddr(w, "proposer", req.Proposer)
		if !ok {
			return
		}
		receiver, ok := decodeAddr(w, "receiver", req.Receiver)
		if !ok {
			return
		}
		amount, ok := new(big.Int).SetString(req.Amount, 10)
		if !ok {
			http.Error(w, "invalid amount", http.StatusBadRequest)
			return
		}
		c, err := e.AddClaim(r.Context(), proposer, receiver, amount, req.PoolCanisterID, req.Description)
		writeClaim(w, c, err)
	})

	mux.HandleFunc("/governance/approvers/add", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req approverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		caller, ok := decodeAddr(w, "caller", req.Caller)
		if !ok {
			return
		}
		approver, ok := decodeAddr(w, "approver", req.Approver)
		if !ok {
			return
		}
		if err := e.AddApprover(caller, approver); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/governance/approvers/remove", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req approverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		caller, ok := decodeAddr(w, "caller", req.Caller)
		if !ok {
			return
		}
		approver, ok := decodeAddr(w, "approver", req.Approver)
		if !ok {
			return
		}
		if err := e.RemoveApprover(caller, approver); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/claims/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/approve"):
			id, ok := claimIDFromPath("/claims/", strings.TrimSuffix(r.URL.Path, "/approve"))
			if !ok {
				http.Error(w, "invalid claim id", http.StatusBadRequest)
				return
			}
			var req actorRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			approver, ok := decodeAddr(w, "actor", req.Actor)
			if !ok {
				return
			}
			c, err := e.ApproveClaim(r.Context(), approver, id)
			writeClaim(w, c, err)
		case strings.HasSuffix(r.URL.Path, "/execute"):
			id, ok := claimIDFromPath("/claims/", strings.TrimSuffix(r.URL.Path, "/execute"))
			if !ok {
				http.Error(w, "invalid claim id", http.StatusBadRequest)
				return
			}
			var req actorRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			caller, ok := decodeAddr(w, "actor", req.Actor)
			if !ok {
				return
			}
			c, err := e.ExecuteClaim(r.Context(), caller, id)
			writeClaim(w, c, err)
		case strings.HasSuffix(r.URL.Path, "/spam"):
			id, ok := claimIDFromPath("/claims/", strings.TrimSuffix(r.URL.Path, "/spam"))
			if !ok {
				http.Error(w, "invalid claim id", http.StatusBadRequest)
				return
			}
			var req actorRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			approver, ok := decodeAddr(w, "actor", req.Actor)
			if !ok {
				return
			}
			c, err := e.MarkAsSpam(approver, id)
			writeClaim(w, c, err)
		case strings.HasSuffix(r.URL.Path, "/withdraw-deposit"):
			id, ok := claimIDFromPath("/claims/", strings.TrimSuffix(r.URL.Path, "/withdraw-deposit"))
			if !ok {
				http.Error(w, "invalid claim id", http.StatusBadRequest)
				return
			}
			var req actorRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			proposer, ok := decodeAddr(w, "actor", req.Actor)
			if !ok {
				return
			}
			amount, err := e.WithdrawDeposit(r.Context(), proposer, id)
			if err != nil {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"withdrawn": amount.String()})
		default:
			http.NotFound(w, r)
		}
	})

	return mux
}
