package rpc

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"bountyboard/native/badge"
)

const (
	codeBadgeInvalidParams = -32041
	codeBadgeNotFound      = -32042
	codeBadgeInternal      = -32043
)

type badgeIDParams struct {
	ID uint64 `json:"id"`
}

type badgeRecipientParams struct {
	Recipient string `json:"recipient"`
}

type badgeJSON struct {
	ID          uint64 `json:"id"`
	Recipient   string `json:"recipient"`
	Category    string `json:"category"`
	Achievement string `json:"achievement"`
	IssuedAt    int64  `json:"issuedAt"`
}

func badgeToJSON(b *badge.Badge) badgeJSON {
	return badgeJSON{
		ID:          b.ID,
		Recipient:   common.Address(b.Recipient).Hex(),
		Category:    b.Category,
		Achievement: b.Achievement,
		IssuedAt:    b.IssuedAt,
	}
}

func (s *Server) handleBadgeGet(w http.ResponseWriter, req *RPCRequest) {
	var params badgeIDParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBadgeInvalidParams, "invalid_params", err.Error())
		return
	}
	record, err := s.badges.Get(params.ID)
	if err != nil {
		if errors.Is(err, badge.ErrNotFound) {
			writeError(w, http.StatusNotFound, req.ID, codeBadgeNotFound, "not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, req.ID, codeBadgeInternal, "internal_error", err.Error())
		return
	}
	writeResult(w, req.ID, badgeToJSON(record))
}

func (s *Server) handleBadgeListByRecipient(w http.ResponseWriter, req *RPCRequest) {
	var params badgeRecipientParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBadgeInvalidParams, "invalid_params", err.Error())
		return
	}
	recipient, err := parseAddress(params.Recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeBadgeInvalidParams, "invalid_params", err.Error())
		return
	}
	ids, err := s.badges.BadgesOf(recipient)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeBadgeInternal, "internal_error", err.Error())
		return
	}
	writeResult(w, req.ID, ids)
}
