package service

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/standard-bridge/pkg/app/errors"
	apphttp "github.com/chainsafe/standard-bridge/pkg/app/http"
	"github.com/chainsafe/standard-bridge/pkg/store"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the transfer query endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/transfers", apphttp.HandleError(h.listTransfers))
	r.Get("/transfers/{id}", apphttp.HandleError(h.getTransfer))
	r.Get("/escrow/{chain}", apphttp.HandleError(h.listEscrowSnapshots))
}

func (h *HTTP) listTransfers(w http.ResponseWriter, r *http.Request) error {
	var opts []store.QueryOption

	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		opts = append(opts, store.WithStatus(store.TransferStatus(status)))
	}
	if kind := q.Get("kind"); kind != "" {
		opts = append(opts, store.WithKind(store.TransferKind(kind)))
	}
	if sender := q.Get("sender"); sender != "" {
		opts = append(opts, store.WithSender(sender))
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return apperrors.BadRequestError(err, "limit must be a positive integer")
		}
		opts = append(opts, store.WithLimit(limit))
	}

	transfers, err := h.service.ListTransfers(r.Context(), opts...)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"transfers": transfers})
	return nil
}

func (h *HTTP) getTransfer(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if id == "" {
		return apperrors.BadRequestError(nil, "transfer id is required")
	}

	transfer, err := h.service.GetTransfer(r.Context(), id)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, transfer)
	return nil
}

func (h *HTTP) listEscrowSnapshots(w http.ResponseWriter, r *http.Request) error {
	chain := chi.URLParam(r, "chain")
	if chain == "" {
		return apperrors.BadRequestError(nil, "chain is required")
	}

	snapshots, err := h.service.ListEscrowSnapshots(r.Context(), chain)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"escrow": snapshots})
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
