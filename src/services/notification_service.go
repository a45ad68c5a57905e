package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/username/fintrack/backend/src/config"
	"github.com/username/fintrack/backend/src/intake"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/model"
	"github.com/username/fintrack/backend/src/models"
)

// Notifier tells a user that a transaction was recorded on their behalf.
type Notifier interface {
	TransactionRecorded(ctx context.Context, user *model.User, tx models.StoredTransaction) error
}

// NewNotifier picks the configured provider, falling back to logging when the
// provider settings are incomplete.
func NewNotifier(cfg *config.AppConfig) Notifier {
	if cfg == nil {
		logger.L.Error("Configuration is nil. Notifier will only log.")
		return &LogNotifier{}
	}

	provider := strings.ToLower(cfg.EmailServiceProvider)
	logger.L.Info("Initializing notifier", "provider", provider)

	switch provider {
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunPrivateAPIKey == "" || cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to LogNotifier.")
			return &LogNotifier{}
		}
		mg := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", cfg.MailgunDomain)
		return &MailgunNotifier{
			mg:          mg,
			senderEmail: cfg.SenderEmail,
			senderName:  cfg.SenderName,
			timeout:     10 * time.Second,
		}
	default:
		return &LogNotifier{}
	}
}

// mailSender is the part of mailgun.Mailgun the notifier uses.
type mailSender interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

type MailgunNotifier struct {
	mg          mailSender
	senderEmail string
	senderName  string
	timeout     time.Duration
}

func (n *MailgunNotifier) TransactionRecorded(ctx context.Context, user *model.User, tx models.StoredTransaction) error {
	if user == nil || user.Email == "" {
		return nil
	}

	from := fmt.Sprintf("%s <%s>", n.senderName, n.senderEmail)
	subject, body := receiptText(user, tx)

	message := n.mg.NewMessage(from, subject, body, user.Email)
	message.AddTag("transaction-receipt")

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	resp, id, err := n.mg.Send(ctx, message)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to send receipt via Mailgun", "error", err, "to", user.Email, "mailgunResp", resp)
		return fmt.Errorf("mailgun send failed: %w", err)
	}
	logger.FromContext(ctx).Info("Receipt sent via Mailgun", "to", user.Email, "id", id, "transactionID", tx.ID)
	return nil
}

// LogNotifier writes the receipt to the log instead of sending it.
type LogNotifier struct{}

func (LogNotifier) TransactionRecorded(ctx context.Context, user *model.User, tx models.StoredTransaction) error {
	subject, _ := receiptText(user, tx)
	to := ""
	if user != nil {
		to = user.Email
	}
	logger.FromContext(ctx).Info("LogNotifier: Would send receipt.", "to", to, "subject", subject, "transactionID", tx.ID)
	return nil
}

var accountNames = map[models.AccountID]string{
	models.AccountCash:    "Cash",
	models.AccountSalary:  "Salary Account",
	models.AccountSavings: "Savings Account",
}

func receiptText(user *model.User, tx models.StoredTransaction) (subject, body string) {
	amount := "Tk " + intake.FormatAmount(tx.Amount)
	account := accountNames[tx.AccountID]

	direction := "added to"
	if tx.Type == models.Expense {
		direction = "taken from"
	}
	subject = fmt.Sprintf("%s %s %s", amount, direction, account)

	name := "there"
	if user != nil && user.Name != "" {
		name = user.Name
	}
	body = fmt.Sprintf(`Hi %s,

%s was %s your %s on %s.
Description: %s
Category: %s
Reference: %s

If you did not record this, please review your transactions.`,
		name, amount, direction, account, tx.Date, tx.Description, tx.Category, tx.ID)
	return subject, body
}
