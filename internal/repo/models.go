package repo

import "time"

// Merchant represents the merchants table row.
type Merchant struct {
	ID                 string
	ExternalID         string
	DisplayName        *string
	LanguagePreference string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MerchantProfile carries data used to upsert a merchant.
type MerchantProfile struct {
	ExternalID         string
	DisplayName        *string
	LanguagePreference *string
}

// MessageRecord persists one side of a conversation turn.
type MessageRecord struct {
	ID         string
	MerchantID string
	Direction  string
	Channel    string
	Intent     *string
	Language   *string
	WidgetType *string
	Content    *string
	CreatedAt  time.Time
}

// Message directions.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)
