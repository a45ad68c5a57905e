package intake

import (
	"context"
	"time"

	"github.com/username/fintrack/backend/src/models"
)

// Sink receives every transaction intake produces, exactly once per successful
// submission. It owns identifier assignment and storage.
type Sink interface {
	Record(ctx context.Context, tx models.Transaction) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, tx models.Transaction) error

func (f SinkFunc) Record(ctx context.Context, tx models.Transaction) error {
	return f(ctx, tx)
}

// Confirmer answers a yes/no question before a salary deposit is recorded.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool {
	return f(message)
}

// Service runs the three intake flows against one sink.
//
// Each Submit method returns the emitted transaction, or nil when the
// submission was a no-op (missing fields, declined confirmation). A non-nil
// error only ever comes from the sink; the form is left untouched in that case.
type Service struct {
	sink     Sink
	now      func() time.Time
	location *time.Location
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone "today" is computed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewService(sink Sink, opts ...Option) *Service {
	s := &Service{
		sink:     sink,
		now:      time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the date stamped on transactions constructed right now.
func (s *Service) Today() string {
	return s.now().In(s.location).Format(models.DateLayout)
}

// SubmitSalary records a salary deposit after the confirmer accepts the amount.
// A nil confirmer counts as a decline.
func (s *Service) SubmitSalary(ctx context.Context, form *SalaryForm, confirm Confirmer) (*models.Transaction, error) {
	amount, ok := ParseAmount(form.Amount)
	if !ok {
		return nil, nil
	}
	if confirm == nil || !confirm.Confirm(SalaryConfirmation(amount)) {
		return nil, nil
	}

	tx, ok := BuildSalary(*form, s.Today())
	if !ok {
		return nil, nil
	}
	if err := s.sink.Record(ctx, tx); err != nil {
		return nil, err
	}
	form.Amount = ""
	return &tx, nil
}

// SubmitReceived records money received into the selected destination. The
// destination selector survives the submission.
func (s *Service) SubmitReceived(ctx context.Context, form *ReceivedForm) (*models.Transaction, error) {
	tx, ok := BuildReceived(*form, s.Today())
	if !ok {
		return nil, nil
	}
	if err := s.sink.Record(ctx, tx); err != nil {
		return nil, err
	}
	form.Amount = ""
	form.Description = ""
	return &tx, nil
}

// SubmitLending records money lent out or paid back. Mode and account survive
// the submission.
func (s *Service) SubmitLending(ctx context.Context, form *LendingForm) (*models.Transaction, error) {
	tx, ok := BuildLending(*form, s.Today())
	if !ok {
		return nil, nil
	}
	if err := s.sink.Record(ctx, tx); err != nil {
		return nil, err
	}
	form.Amount = ""
	form.Person = ""
	return &tx, nil
}
