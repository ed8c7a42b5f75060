package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"bountyboard/native/bounty"
	"bountyboard/observability"
)

const (
	codeBountyInvalidParams = -32031
	codeBountyNotFound      = -32032
	codeBountyForbidden     = -32033
	codeBountyConflict      = -32034
	codeBountyInternal      = -32035
)

type bountyCreateParams struct {
	Requester   string `json:"requester"`
	Description string `json:"description"`
	Reward      string `json:"reward"`
	Category    string `json:"category"`
}

type bountyIDParams struct {
	ID uint64 `json:"id"`
}

type bountyActorParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
}

type bountySubmitParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
	URL    string `json:"url"`
}

type bountyRejectParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
	Reason string `json:"reason"`
}

type bountyAddressParams struct {
	Address string `json:"address"`
}

type bountyJSON struct {
	ID            uint64 `json:"id"`
	Requester     string `json:"requester"`
	Helper        string `json:"helper,omitempty"`
	Description   string `json:"description"`
	Reward        string `json:"reward"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	CreatedAt     int64  `json:"createdAt"`
	SubmissionURL string `json:"submissionUrl,omitempty"`
}

type bountyApproveResult struct {
	Bounty  bountyJSON `json:"bounty"`
	BadgeID uint64     `json:"badgeId"`
}

func bountyToJSON(b *bounty.Bounty) bountyJSON {
	out := bountyJSON{
		ID:            b.ID,
		Requester:     common.Address(b.Requester).Hex(),
		Description:   b.Description,
		Reward:        b.Reward.String(),
		Category:      b.Category.String(),
		Status:        b.Status.String(),
		CreatedAt:     b.CreatedAt,
		SubmissionURL: b.SubmissionURL,
	}
	if b.Helper != ([20]byte{}) {
		out.Helper = common.Address(b.Helper).Hex()
	}
	return out
}

func parseAddress(value string) ([20]byte, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("invalid address: %s", value)
	}
	return common.HexToAddress(trimmed), nil
}

func parsePositiveBigInt(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

// writeBountyError maps engine failures onto the RPC error surface. Guard
// violations keep their taxonomy so clients can react without string parsing.
func writeBountyError(w http.ResponseWriter, id int, err error) {
	switch {
	case errors.Is(err, bounty.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, id, codeBountyInvalidParams, "invalid_input", err.Error())
	case errors.Is(err, bounty.ErrNotFound):
		writeError(w, http.StatusNotFound, id, codeBountyNotFound, "not_found", err.Error())
	case errors.Is(err, bounty.ErrUnauthorized):
		writeError(w, http.StatusForbidden, id, codeBountyForbidden, "unauthorized", err.Error())
	case errors.Is(err, bounty.ErrWrongState):
		writeError(w, http.StatusConflict, id, codeBountyConflict, "wrong_state", err.Error())
	case errors.Is(err, bounty.ErrInsufficientFunds):
		writeError(w, http.StatusConflict, id, codeBountyConflict, "insufficient_funds", err.Error())
	case errors.Is(err, bounty.ErrInsufficientAllowance):
		writeError(w, http.StatusConflict, id, codeBountyConflict, "insufficient_allowance", err.Error())
	case errors.Is(err, bounty.ErrNoEscrow):
		writeError(w, http.StatusConflict, id, codeBountyConflict, "no_escrow", err.Error())
	case errors.Is(err, bounty.ErrIssuanceFailure):
		writeError(w, http.StatusInternalServerError, id, codeBountyInternal, "issuance_failure", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, id, codeBountyInternal, "internal_error", err.Error())
	}
}

func (s *Server) handleBountyCreate(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params bountyCreateParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	requester, err := parseAddress(params.Requester)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	reward, err := parsePositiveBigInt(params.Reward)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	category, err := bounty.ParseCategory(params.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	record, err := s.engine.CreateBounty(requester, params.Description, reward, category)
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	observability.ModuleMetrics().RecordTransition("create")
	s.log.Info("bounty created", "id", record.ID, "requester", params.Requester, "reward", record.Reward.String())
	writeResult(w, req.ID, bountyToJSON(record))
}

func (s *Server) handleBountyClaim(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params bountyActorParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	record, err := s.engine.ClaimBounty(params.ID, caller)
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	observability.ModuleMetrics().RecordTransition("claim")
	writeResult(w, req.ID, bountyToJSON(record))
}

func (s *Server) handleBountySubmit(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params bountySubmitParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	record, err := s.engine.SubmitSolution(params.ID, caller, params.URL)
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	observability.ModuleMetrics().RecordTransition("submit")
	writeResult(w, req.ID, bountyToJSON(record))
}

func (s *Server) handleBountyApprove(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params bountyActorParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	record, badgeID, err := s.engine.ApproveSolution(params.ID, caller)
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	observability.ModuleMetrics().RecordTransition("approve")
	s.log.Info("bounty completed", "id", record.ID, "badgeId", badgeID)
	writeResult(w, req.ID, bountyApproveResult{Bounty: bountyToJSON(record), BadgeID: badgeID})
}

func (s *Server) handleBountyReject(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params bountyRejectParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	record, err := s.engine.RejectSolution(params.ID, caller, params.Reason)
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	observability.ModuleMetrics().RecordTransition("reject")
	writeResult(w, req.ID, bountyToJSON(record))
}

func (s *Server) handleBountyCancel(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params bountyActorParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	record, err := s.engine.CancelBounty(params.ID, caller)
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	observability.ModuleMetrics().RecordTransition("cancel")
	writeResult(w, req.ID, bountyToJSON(record))
}

func (s *Server) handleBountyGet(w http.ResponseWriter, req *RPCRequest) {
	var params bountyIDParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	record, err := s.engine.GetBounty(params.ID)
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, bountyToJSON(record))
}

func (s *Server) handleBountyListOpen(w http.ResponseWriter, req *RPCRequest) {
	ids, err := s.engine.ListOpen()
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ids)
}

func (s *Server) handleBountyListByRequester(w http.ResponseWriter, req *RPCRequest) {
	var params bountyAddressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	ids, err := s.engine.ListByRequester(addr)
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ids)
}

func (s *Server) handleBountyListByHelper(w http.ResponseWriter, req *RPCRequest) {
	var params bountyAddressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBountyInvalidParams, "invalid_params", err.Error())
		return
	}
	ids, err := s.engine.ListByHelper(addr)
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ids)
}

func (s *Server) handleBountyEscrowBalance(w http.ResponseWriter, req *RPCRequest) {
	balance, err := s.engine.EscrowBalance()
	if err != nil {
		writeBountyError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, balance.String())
}
