package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountNumber is stored as a string but the remote API is inconsistent
// about whether it serializes account numbers as JSON strings or numbers,
// so we accept both on the wire.
type AccountNumber string

func (a *AccountNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*a = AccountNumber(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*a = AccountNumber(num.String())
	return nil
}

// User is a record in the remote user directory. The remote API owns it;
// we only ever hold read copies plus the last-known snapshot in the
// session scope of the local store.
type User struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Password      string          `json:"password"`
	AccountNumber AccountNumber   `json:"accountNumber"`
	AccountType   string          `json:"accountType"`
	Balance       decimal.Decimal `json:"balance"`
	Role          string          `json:"role"`
	CreatedAt     string          `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// TransactionRecord is a completed movement of money. Immutable once the
// remote system accepted it; local copies are read-only mirrors keyed by ID.
type TransactionRecord struct {
	ID                       string          `json:"id,omitempty"`
	AccountSourceID          string          `json:"accountSourceId"`
	AccountSourceName        string          `json:"accountSourceName"`
	AccountSourceNumber      AccountNumber   `json:"accountSourceNumber"`
	AccountDestinationID     string          `json:"accountDestinationId"`
	AccountDestinationName   string          `json:"accountDestinationName"`
	AccountDestinationNumber AccountNumber   `json:"accountDestinationNumber"`
	Nominal                  decimal.Decimal `json:"nominal"`
	Category                 string          `json:"category"`
	Notes                    string          `json:"notes"`
	CreatedAt                time.Time       `json:"createdAt"`
}

// Involves reports whether the user with the given id is a participant.
func (t *TransactionRecord) Involves(userID string) bool {
	return t.AccountSourceID == userID || t.AccountDestinationID == userID
}

// PendingTransfer is a TransactionRecord-shaped payload created while
// offline, keyed by a locally generated sequence number. It never carries a
// server-assigned id; that arrives only when the replay succeeds.
type PendingTransfer struct {
	LocalID uint64            `json:"localId"`
	Payload TransactionRecord `json:"payload"`
}

// ActivityEntry is one line of the per-user append-only activity log.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Category groups transactions for the categorize view. Assignments hold
// transaction ids only; the records themselves live in the mirror.
type Category struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Transactions []string `json:"transactions"`
}

// NewAccountNumber builds a fresh account number for registration:
// the current date (YYYYMMDD) followed by four random digits.
func NewAccountNumber(now time.Time, random4 int) AccountNumber {
	datePart := now.Format("20060102")
	return AccountNumber(datePart + strconv.Itoa(1000+random4%9000))
}
