package model

import "time"

type ThingType string

const (
	TypeGift  ThingType = "GIFT"
	TypeSell  ThingType = "SELL"
	TypeOrder ThingType = "ORDER"
	TypeLend  ThingType = "LEND"
	TypeRent  ThingType = "RENT"
	TypeShare ThingType = "SHARE"
)

// Category groups thing types by booking behavior. All dispatch in the
// booking engine goes through CategoryOf so adding a type is a
// one-place change.
type Category int

const (
	// CategorySingleUse: one accepted booking consumes the thing
	// (GIFT/SELL). A pending request puts the thing in TAKEN.
	CategorySingleUse Category = iota
	// CategoryRepeatable: orders with delivery date and quantity
	// (ORDER); the thing stays ACTIVE.
	CategoryRepeatable
	// CategoryDateBased: availability governed by non-overlapping date
	// ranges (LEND/RENT/SHARE); the thing stays ACTIVE.
	CategoryDateBased
	// CategoryUnknown: not a recognized thing type.
	CategoryUnknown
)

func CategoryOf(t ThingType) Category {
	switch t {
	case TypeGift, TypeSell:
		return CategorySingleUse
	case TypeOrder:
		return CategoryRepeatable
	case TypeLend, TypeRent, TypeShare:
		return CategoryDateBased
	default:
		return CategoryUnknown
	}
}

type ThingStatus string

const (
	ThingActive   ThingStatus = "ACTIVE"
	ThingInactive ThingStatus = "INACTIVE"
	ThingTaken    ThingStatus = "TAKEN"
)

type Thing struct {
	Code        string      `json:"thing_code"`
	Type        ThingType   `json:"thing_type"`
	Owner       string      `json:"thing_owner"`
	Created     time.Time   `json:"thing_created"`
	Headline    string      `json:"thing_headline"`
	Description string      `json:"thing_description,omitempty"`
	Thumbnail   string      `json:"thing_thumbnail,omitempty"`
	Status      ThingStatus `json:"thing_status"`
	Fee         *float64    `json:"thing_fee,omitempty"`
	Available   bool        `json:"thing_available"`
	// Deal lists users whose single-use requests were accepted.
	Deal []string `json:"thing_deal,omitempty"`
}

func (t *Thing) IsOwner(userCode string) bool { return t.Owner == userCode }
