// Package wizard drives the four-step transfer flow: recipient validation,
// amount entry, confirmation, result.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/banktechpro/banktech/internal/core/domain"
)

type Step int

const (
	StepRecipient Step = iota + 1
	StepAmount
	StepConfirm
	StepResult
)

// Status gates what the UI may invoke; it never moves the step by itself.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// FormData mirrors the raw form fields as the user typed them.
type FormData struct {
	RecipientAccountNumber string `json:"recipientAccountNumber"`
	Amount                 string `json:"amount"`
	Notes                  string `json:"notes"`
}

// Remote is the slice of the remote API the wizard needs: the account
// directory lookup and the single logical submission call.
type Remote interface {
	FindUserByAccountNumber(ctx context.Context, accountNumber domain.AccountNumber) (*domain.User, error)
	SubmitTransfer(ctx context.Context, payload domain.TransactionRecord) error
}

// Queue is where a transfer goes when the network is down.
type Queue interface {
	EnqueuePending(payload domain.TransactionRecord) (uint64, error)
}

// ErrBusy is returned when a validate or submit arrives while an earlier
// one is still in flight. The UI disables its buttons on those statuses;
// this is the hard backstop behind it.
var ErrBusy = errors.New("an operation is already in progress")

var errWrongStep = &domain.ValidationError{Message: "This action is not available at the current step."}

// Wizard is the transfer state machine. One instance serves the single
// authenticated session; a mutex keeps concurrent HTTP calls from
// interleaving, and an in-flight submission can never be started twice.
type Wizard struct {
	mu           sync.Mutex
	step         Step
	status       Status
	errorMessage string
	recipient    *domain.User
	form         FormData

	remote Remote
	queue  Queue
	online func() bool
	now    func() time.Time
}

func New(remote Remote, queue Queue, online func() bool) *Wizard {
	return &Wizard{
		step:   StepRecipient,
		status: StatusIdle,
		remote: remote,
		queue:  queue,
		online: online,
		now:    time.Now,
	}
}

// Recipient is the resolved counterparty as exposed to the UI. Directory
// records carry passwords and balances; those stay inside.
type Recipient struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	AccountNumber domain.AccountNumber `json:"accountNumber"`
}

// State is a point-in-time snapshot for the UI.
type State struct {
	Step         Step       `json:"currentStep"`
	Status       Status     `json:"status"`
	ErrorMessage string     `json:"errorMessage"`
	Recipient    *Recipient `json:"recipient"`
	Form         FormData   `json:"formData"`
}

func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	state := State{
		Step:         w.step,
		Status:       w.status,
		ErrorMessage: w.errorMessage,
		Form:         w.form,
	}
	if w.recipient != nil {
		state.Recipient = &Recipient{
			ID:            w.recipient.ID,
			Name:          w.recipient.Name,
			AccountNumber: w.recipient.AccountNumber,
		}
	}
	return state
}

// ValidateRecipient resolves the entered account number against the remote
// directory. A match advances to the amount step; the self-transfer check
// comes first and wins even when the number would also match a remote
// record.
func (w *Wizard) ValidateRecipient(ctx context.Context, accountNumber string, currentUser *domain.User) error {
	w.mu.Lock()
	if w.status == StatusValidating || w.status == StatusSubmitting {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.step != StepRecipient {
		w.mu.Unlock()
		return errWrongStep
	}
	w.form.RecipientAccountNumber = accountNumber

	if domain.AccountNumber(accountNumber) == currentUser.AccountNumber {
		w.status = StatusError
		w.errorMessage = domain.ErrSelfTransfer.Message
		w.mu.Unlock()
		return domain.ErrSelfTransfer
	}

	w.status = StatusValidating
	w.errorMessage = ""
	w.mu.Unlock()

	found, err := w.remote.FindUserByAccountNumber(ctx, domain.AccountNumber(accountNumber))

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.status = StatusError
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			w.errorMessage = notFound.Message
		} else {
			w.errorMessage = "Failed to verify account. Please try again."
		}
		return err
	}

	w.recipient = found
	w.status = StatusIdle
	w.step = StepAmount
	return nil
}

// EnterAmount validates the amount locally (positive, within the sender's
// last-known balance) and advances to confirmation. Violations set an
// inline error and stay on the amount step.
func (w *Wizard) EnterAmount(amount, notes string, currentUser *domain.User) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == StatusValidating || w.status == StatusSubmitting {
		return ErrBusy
	}
	if w.step != StepAmount {
		return errWrongStep
	}
	w.form.Amount = amount
	w.form.Notes = notes

	parsed, err := domain.ParseAmount(amount)
	if err == nil {
		err = domain.CheckAgainstBalance(parsed, currentUser.Balance)
	}
	if err != nil {
		w.status = StatusError
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			w.errorMessage = validation.Message
		} else {
			w.errorMessage = err.Error()
		}
		return err
	}

	w.status = StatusIdle
	w.errorMessage = ""
	w.step = StepConfirm
	return nil
}

// Submit performs the confirmed transfer. Offline it queues the payload
// durably and reports success without touching any balance (the visible
// balance is understood to be stale until the sync pass runs). Online it
// goes through the one logical submission call; there is no partial-step
// auto-retry, on failure the user re-triggers from the confirm step.
func (w *Wizard) Submit(
	ctx context.Context,
	currentUser *domain.User,
	refreshUser func(context.Context) error,
	refreshTransactions func(context.Context) error,
	logActivity func(action string),
) error {
	w.mu.Lock()
	if w.status == StatusSubmitting || w.status == StatusValidating {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.step != StepConfirm {
		w.mu.Unlock()
		return errWrongStep
	}
	if w.recipient == nil {
		w.mu.Unlock()
		return errWrongStep
	}
	recipient := w.recipient
	nominal, err := domain.ParseAmount(w.form.Amount)
	if err != nil {
		w.status = StatusError
		w.errorMessage = domain.ErrInvalidAmount.Message
		w.mu.Unlock()
		return err
	}
	notes := w.form.Notes
	w.status = StatusSubmitting
	w.errorMessage = ""
	w.mu.Unlock()

	if logActivity == nil {
		logActivity = func(string) {}
	}

	payload := domain.TransactionRecord{
		AccountSourceID:          currentUser.ID,
		AccountSourceName:        currentUser.Name,
		AccountSourceNumber:      currentUser.AccountNumber,
		AccountDestinationID:     recipient.ID,
		AccountDestinationName:   recipient.Name,
		AccountDestinationNumber: recipient.AccountNumber,
		Nominal:                  nominal,
		Category:                 "transfer",
		Notes:                    notes,
		CreatedAt:                w.now().UTC(),
	}

	if !w.online() {
		if _, err := w.queue.EnqueuePending(payload); err != nil {
			slog.Error("Could not queue transfer offline", "error", err)
			w.fail("Could not save transaction offline.")
			return err
		}
		slog.Info("Offline: queued transfer locally",
			"nominal", nominal.String(), "destination", recipient.Name)
		logActivity(fmt.Sprintf("Queued offline transfer of Rp. %s to %s", domain.FormatAmount(nominal), recipient.Name))
		w.succeed()
		return nil
	}

	if err := w.remote.SubmitTransfer(ctx, payload); err != nil {
		slog.Error("Transfer submission failed", "error", err)
		w.fail("The transfer failed. Please try again.")
		return err
	}

	logActivity(fmt.Sprintf("Transferred Rp. %s to %s", domain.FormatAmount(nominal), recipient.Name))

	// Refreshes are reads: a failure here degrades to cached data and must
	// not turn an applied transfer into a reported failure.
	if refreshUser != nil {
		if err := refreshUser(ctx); err != nil {
			slog.Warn("Could not refresh user data after transfer", "error", err)
		}
	}
	if refreshTransactions != nil {
		if err := refreshTransactions(ctx); err != nil {
			slog.Warn("Could not refresh transactions after transfer", "error", err)
		}
	}

	w.succeed()
	return nil
}

// Back returns to the previous step. Blocked while a submission is in
// flight; navigating does not cancel outstanding network calls.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status == StatusSubmitting || w.status == StatusValidating {
		return
	}
	if w.step > StepRecipient && w.step < StepResult {
		w.step--
		w.status = StatusIdle
		w.errorMessage = ""
	}
}

// Reset returns the wizard to its initial state. Called when the user
// starts a new transfer or navigates away.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = StepRecipient
	w.status = StatusIdle
	w.errorMessage = ""
	w.recipient = nil
	w.form = FormData{}
}

func (w *Wizard) fail(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = StatusError
	w.errorMessage = message
}

func (w *Wizard) succeed() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = StatusSuccess
	w.errorMessage = ""
	w.step = StepResult
}
