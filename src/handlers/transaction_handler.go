package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

const maxListLimit = 500

type TransactionHandler struct {
	store *services.TransactionStore
}

func NewTransactionHandler(store *services.TransactionStore) *TransactionHandler {
	return &TransactionHandler{store: store}
}

func parseTransactionFilter(r *http.Request) (models.TransactionFilter, error) {
	q := r.URL.Query()
	filter := models.TransactionFilter{
		From: q.Get("from"),
		To:   q.Get("to"),
		Type: models.TransactionType(q.Get("type")),
	}

	for _, d := range []string{filter.From, filter.To} {
		if d == "" {
			continue
		}
		if _, err := utils.ParseDate(d); err != nil {
			return filter, err
		}
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return filter, fmt.Errorf("unknown transaction type %q", filter.Type)
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, fmt.Errorf("limit must be a positive integer")
		}
		filter.Limit = min(limit, maxListLimit)
	}
	return filter, nil
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	log := logger.FromContext(r.Context())

	filter, err := parseTransactionFilter(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, err := h.store.List(r.Context(), userID, filter)
	if err != nil {
		log.Error("Failed to list transactions", "error", err)
		utils.SendJSONError(w, "failed to list transactions", http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(transactions)
	if etagErr != nil {
		log.Error("Failed to generate ETag for transactions", "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(clientETag) == quotedETag {
				log.Debug("ETag match for transactions", "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, transactions)
}
