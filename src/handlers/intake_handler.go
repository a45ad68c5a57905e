package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/username/fintrack/backend/src/intake"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/model"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

const (
	statusRecorded             = "recorded"
	statusRejected             = "rejected"
	statusConfirmationRequired = "confirmation_required"
)

type submitResponse struct {
	Status       string                    `json:"status"`
	Transaction  *models.StoredTransaction `json:"transaction,omitempty"`
	Confirmation string                    `json:"confirmation,omitempty"`
	Form         intake.FormState          `json:"form"`
}

// IntakeHandler exposes the salary, receipt and lending forms. The form lives
// in the draft store; a submit body, when present, overwrites the fields it
// names before the submission runs.
type IntakeHandler struct {
	forms    *services.FormStore
	store    *services.TransactionStore
	notifier services.Notifier
	db       *sql.DB
	location *time.Location
	now      func() time.Time
}

func NewIntakeHandler(forms *services.FormStore, store *services.TransactionStore, notifier services.Notifier, db *sql.DB, location *time.Location) *IntakeHandler {
	if location == nil {
		location = time.UTC
	}
	return &IntakeHandler{
		forms:    forms,
		store:    store,
		notifier: notifier,
		db:       db,
		location: location,
		now:      time.Now,
	}
}

// decodeOptional decodes r's body into v. An empty body leaves v untouched.
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *IntakeHandler) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.forms.Get(userID))
}

func (h *IntakeHandler) HandlePutForm(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var form intake.FormState
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := h.forms.Save(userID, form)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, saved)
}

func (h *IntakeHandler) HandleSubmitSalary(w http.ResponseWriter, r *http.Request) {
	var confirmation string
	h.submit(w, r, intake.TabSalary, func(ctx context.Context, svc *intake.Service, form *intake.FormState) (*models.Transaction, error) {
		var body struct {
			intake.SalaryForm
			Confirm bool `json:"confirm"`
		}
		body.SalaryForm = form.Salary
		if err := decodeOptional(r, &body); err != nil {
			return nil, errBadBody
		}
		form.Salary = body.SalaryForm

		confirmer := intake.ConfirmFunc(func(message string) bool {
			confirmation = message
			return body.Confirm
		})
		tx, err := svc.SubmitSalary(ctx, &form.Salary, confirmer)
		if tx == nil && err == nil && confirmation != "" && !body.Confirm {
			return nil, errConfirmationRequired{message: confirmation}
		}
		return tx, err
	})
}

func (h *IntakeHandler) HandleSubmitReceived(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, intake.TabReceived, func(ctx context.Context, svc *intake.Service, form *intake.FormState) (*models.Transaction, error) {
		if err := decodeOptional(r, &form.Received); err != nil {
			return nil, errBadBody
		}
		return svc.SubmitReceived(ctx, &form.Received)
	})
}

func (h *IntakeHandler) HandleSubmitLending(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, intake.TabLending, func(ctx context.Context, svc *intake.Service, form *intake.FormState) (*models.Transaction, error) {
		if err := decodeOptional(r, &form.Lending); err != nil {
			return nil, errBadBody
		}
		return svc.SubmitLending(ctx, &form.Lending)
	})
}

var errBadBody = errors.New("invalid request body")

type errConfirmationRequired struct{ message string }

func (e errConfirmationRequired) Error() string { return "confirmation required" }

type submitFunc func(ctx context.Context, svc *intake.Service, form *intake.FormState) (*models.Transaction, error)

func (h *IntakeHandler) submit(w http.ResponseWriter, r *http.Request, tab intake.Tab, run submitFunc) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	form := h.forms.Get(userID)
	form.ActiveTab = tab

	var stored *models.StoredTransaction
	svc := intake.NewService(
		h.store.Sink(userID, func(st models.StoredTransaction) { stored = &st }),
		intake.WithLocation(h.location),
		intake.WithClock(h.now),
	)

	_, err := run(ctx, svc, &form)
	var confirm errConfirmationRequired
	switch {
	case errors.Is(err, errBadBody):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.As(err, &confirm):
		// The amount the user typed is kept so the confirmed retry can send an
		// empty body.
		saved, saveErr := h.forms.Save(userID, form)
		if saveErr != nil {
			utils.SendJSONError(w, saveErr.Error(), http.StatusBadRequest)
			return
		}
		utils.WriteJSON(w, http.StatusOK, submitResponse{Status: statusConfirmationRequired, Confirmation: confirm.message, Form: saved})
		return
	case err != nil:
		log.Error("Failed to record transaction", "tab", tab, "error", err)
		utils.SendJSONError(w, "failed to record transaction", http.StatusInternalServerError)
		return
	}

	saved, err := h.forms.Save(userID, form)
	if err != nil {
		// An unknown selector already made the submission a no-op. The stored
		// draft is left as it was.
		log.Debug("Submitted form not saved", "tab", tab, "error", err)
		saved = h.forms.Get(userID)
	}

	if stored == nil {
		utils.WriteJSON(w, http.StatusOK, submitResponse{Status: statusRejected, Form: saved})
		return
	}

	h.notify(ctx, userID, *stored)
	utils.WriteJSON(w, http.StatusCreated, submitResponse{Status: statusRecorded, Transaction: stored, Form: saved})
}

func (h *IntakeHandler) notify(ctx context.Context, userID int64, tx models.StoredTransaction) {
	if h.notifier == nil {
		return
	}
	log := logger.FromContext(ctx)
	user, err := model.GetUserByID(ctx, h.db, userID)
	if err != nil {
		log.Warn("Skipping receipt, user lookup failed", "error", err)
		return
	}
	if err := h.notifier.TransactionRecorded(ctx, user, tx); err != nil {
		log.Warn("Receipt notification failed", "transactionID", tx.ID, "error", err)
	}
}
