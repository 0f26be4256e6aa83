package service

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/standard-bridge/pkg/app/errors"
	apphttp "github.com/chainsafe/standard-bridge/pkg/app/http"
	"github.com/chainsafe/standard-bridge/pkg/roles"
)

var validate = validator.New()

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the admin endpoints on the given chi router. The
// router is expected to sit behind the token middleware.
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/chains/{chain}", func(r chi.Router) {
		r.Post("/pause", apphttp.HandleError(h.pause))
		r.Post("/unpause", apphttp.HandleError(h.unpause))

		r.Post("/fees/flat", apphttp.HandleError(h.setFlatFee))
		r.Post("/fees/bridging", apphttp.HandleError(h.setBridgingFee))
		r.Post("/fees/recipient", apphttp.HandleError(h.setFlatFeeRecipient))
		r.Post("/fees/exempt", apphttp.HandleError(h.setFeeExempt))

		r.Post("/fast/backend", apphttp.HandleError(h.setBackend))
		r.Post("/fast/fee", apphttp.HandleError(h.setSupersonicFee))
		r.Post("/fast/credit", apphttp.HandleError(h.creditFastBridge))

		r.Get("/roles/{role}", apphttp.HandleError(h.roleMembers))
		r.Post("/roles/grant", apphttp.HandleError(h.grantRole))
		r.Post("/roles/revoke", apphttp.HandleError(h.revokeRole))
	})
}

type setFeeRequest struct {
	FeeWei string `json:"fee_wei" validate:"required,number"`
}

type setBridgingFeeRequest struct {
	Numerator uint64 `json:"numerator" validate:"lt=1000"`
}

type setRecipientRequest struct {
	Recipient string `json:"recipient" validate:"required,eth_addr"`
}

type setExemptRequest struct {
	Asset  string `json:"asset" validate:"required,eth_addr"`
	Exempt bool   `json:"exempt"`
}

type setBackendRequest struct {
	Backend string `json:"backend" validate:"required,eth_addr"`
}

type creditRequest struct {
	Beneficiary string `json:"beneficiary" validate:"required,eth_addr"`
	Token       string `json:"token" validate:"omitempty,eth_addr"`
	AmountWei   string `json:"amount_wei" validate:"required,number"`
}

type roleChangeRequest struct {
	Role    string `json:"role" validate:"required,oneof=admin pauser backend bridge"`
	Address string `json:"address" validate:"required,eth_addr"`
}

func (h *HTTP) pause(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.Pause(r.Context(), chi.URLParam(r, "chain")); err != nil {
		return err
	}
	h.writeJSON(w, map[string]any{"paused": true})
	return nil
}

func (h *HTTP) unpause(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.Unpause(r.Context(), chi.URLParam(r, "chain")); err != nil {
		return err
	}
	h.writeJSON(w, map[string]any{"paused": false})
	return nil
}

func (h *HTTP) setFlatFee(w http.ResponseWriter, r *http.Request) error {
	var req setFeeRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	fee, err := parseWei(req.FeeWei)
	if err != nil {
		return err
	}
	change, err := h.service.SetFlatFee(r.Context(), chi.URLParam(r, "chain"), fee)
	if err != nil {
		return err
	}
	h.writeJSON(w, change)
	return nil
}

func (h *HTTP) setBridgingFee(w http.ResponseWriter, r *http.Request) error {
	var req setBridgingFeeRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	change, err := h.service.SetBridgingFee(r.Context(), chi.URLParam(r, "chain"), req.Numerator)
	if err != nil {
		return err
	}
	h.writeJSON(w, change)
	return nil
}

func (h *HTTP) setFlatFeeRecipient(w http.ResponseWriter, r *http.Request) error {
	var req setRecipientRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	change, err := h.service.SetFlatFeeRecipient(r.Context(), chi.URLParam(r, "chain"), common.HexToAddress(req.Recipient))
	if err != nil {
		return err
	}
	h.writeJSON(w, change)
	return nil
}

func (h *HTTP) setFeeExempt(w http.ResponseWriter, r *http.Request) error {
	var req setExemptRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	err := h.service.SetFeeExempt(r.Context(), chi.URLParam(r, "chain"), common.HexToAddress(req.Asset), req.Exempt)
	if err != nil {
		return err
	}
	h.writeJSON(w, map[string]any{"asset": req.Asset, "exempt": req.Exempt})
	return nil
}

func (h *HTTP) setBackend(w http.ResponseWriter, r *http.Request) error {
	var req setBackendRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	change, err := h.service.SetBackend(r.Context(), chi.URLParam(r, "chain"), common.HexToAddress(req.Backend))
	if err != nil {
		return err
	}
	h.writeJSON(w, change)
	return nil
}

func (h *HTTP) setSupersonicFee(w http.ResponseWriter, r *http.Request) error {
	var req setFeeRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	fee, err := parseWei(req.FeeWei)
	if err != nil {
		return err
	}
	change, err := h.service.SetSupersonicFee(r.Context(), chi.URLParam(r, "chain"), fee)
	if err != nil {
		return err
	}
	h.writeJSON(w, change)
	return nil
}

func (h *HTTP) creditFastBridge(w http.ResponseWriter, r *http.Request) error {
	var req creditRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	amount, err := parseWei(req.AmountWei)
	if err != nil {
		return err
	}
	err = h.service.CreditFastBridge(
		r.Context(),
		chi.URLParam(r, "chain"),
		common.HexToAddress(req.Beneficiary),
		common.HexToAddress(req.Token),
		amount,
	)
	if err != nil {
		return err
	}
	h.writeJSON(w, map[string]any{"beneficiary": req.Beneficiary, "credited": amount.String()})
	return nil
}

func (h *HTTP) roleMembers(w http.ResponseWriter, r *http.Request) error {
	role := roles.Role(chi.URLParam(r, "role"))
	members, err := h.service.RoleMembers(r.Context(), chi.URLParam(r, "chain"), role)
	if err != nil {
		return err
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Hex())
	}
	h.writeJSON(w, map[string]any{"role": role, "members": out})
	return nil
}

func (h *HTTP) grantRole(w http.ResponseWriter, r *http.Request) error {
	var req roleChangeRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	err := h.service.GrantRole(r.Context(), chi.URLParam(r, "chain"), roles.Role(req.Role), common.HexToAddress(req.Address))
	if err != nil {
		return err
	}
	h.writeJSON(w, map[string]any{"role": req.Role, "address": req.Address, "granted": true})
	return nil
}

func (h *HTTP) revokeRole(w http.ResponseWriter, r *http.Request) error {
	var req roleChangeRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}
	err := h.service.RevokeRole(r.Context(), chi.URLParam(r, "chain"), roles.Role(req.Role), common.HexToAddress(req.Address))
	if err != nil {
		return err
	}
	h.writeJSON(w, map[string]any{"role": req.Role, "address": req.Address, "granted": false})
	return nil
}

// decode reads, unmarshals and validates a JSON request body.
func (h *HTTP) decode(r *http.Request, into any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, into); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := validate.Struct(into); err != nil {
		return apperrors.BadRequestError(err, err.Error())
	}
	return nil
}

func parseWei(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, apperrors.BadRequestError(nil, "amount must be a non-negative base-10 integer")
	}
	return v, nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(data)
}
