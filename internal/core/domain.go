package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

type (
	TransactionType string

	BillingCycle string

	// Date is a calendar day. It marshals as "2006-01-02", matching the
	// transaction_date strings kept in the persisted collections.
	Date struct {
		time.Time
	}

	// Transaction is a single recorded income or expense event.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		CategoryID  string          `json:"category_id"`
		Date        Date            `json:"transaction_date"`
		Description string          `json:"description,omitempty"`
		Tags        []string        `json:"tags,omitempty"`
		ReceiptURL  string          `json:"receipt_url,omitempty"`
		Location    string          `json:"location,omitempty"`
		Mood        string          `json:"mood,omitempty"`
		IsRecurring bool            `json:"is_recurring,omitempty"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	// Category classifies transactions. Type must match the type of any
	// transaction that references it.
	Category struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Icon        string          `json:"icon"`
		Color       string          `json:"color"`
		Type        TransactionType `json:"type"`
		BudgetLimit Money           `json:"budget_limit,omitempty"`
	}

	// Budget is a named spending ceiling. Spent is maintained only through
	// budget edits and is never recomputed from the transaction ledger.
	Budget struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Limit Money  `json:"limit"`
		Spent Money  `json:"spent"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}

	// Subscription is a recurring billed obligation. NextBillingDate is not
	// advanced after a billing event passes.
	Subscription struct {
		ID              string       `json:"id"`
		Name            string       `json:"name"`
		Amount          Money        `json:"amount"`
		BillingCycle    BillingCycle `json:"billingCycle"`
		NextBillingDate Date         `json:"nextBillingDate"`
		Icon            string       `json:"icon"`
		Category        string       `json:"category"`
		IsActive        bool         `json:"isActive"`
	}

	// Goal is a savings target. CurrentAmount only ever grows, via explicit
	// add-funds actions.
	Goal struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		TargetAmount  Money  `json:"targetAmount"`
		CurrentAmount Money  `json:"currentAmount"`
		Deadline      Date   `json:"deadline"`
		Icon          string `json:"icon"`
		Color         string `json:"color"`
	}

	// User is a registered profile. The PIN is kept as-is in local storage;
	// this is a single-user local tool, not an authentication boundary.
	User struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		PIN       string    `json:"pin"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidCycle       = errors.New("invalid billing cycle")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidPIN         = errors.New("pin must be 4 to 6 digits")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// NewID returns a fresh opaque identifier for any entity.
func NewID() string {
	return uuid.NewString()
}

// NewDate builds a Date from calendar parts in the local time zone.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.Local)}
}

// ParseDate parses a "2006-01-02" calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.Local)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Older records carry a full timestamp; only the day part matters.
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (c BillingCycle) Validate() error {
	switch c {
	case BillingMonthly, BillingYearly:
		return nil
	default:
		return ErrInvalidCycle
	}
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.Limit <= 0 {
		return ErrInvalidAmount
	}
	if b.Spent < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s Subscription) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.Amount <= 0 {
		return ErrInvalidAmount
	}
	if err := s.BillingCycle.Validate(); err != nil {
		return err
	}
	return s.NextBillingDate.Validate()
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidAmount
	}
	if g.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidatePIN checks the register/login PIN format: 4 to 6 digits.
func ValidatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}
