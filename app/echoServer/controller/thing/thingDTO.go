package thing

type CreateThingReq struct {
	Type        string   `json:"thing_type" validate:"required,oneof=GIFT SELL ORDER LEND RENT SHARE"`
	Headline    string   `json:"thing_headline" validate:"required,max=64"`
	Description string   `json:"thing_description" validate:"max=256"`
	Thumbnail   string   `json:"thing_thumbnail" validate:"omitempty,max=16,alphanum"`
	Fee         *float64 `json:"thing_fee" validate:"omitempty,gte=0"`
	// CollectionCode files the new thing into one of the caller's
	// collections in the same call.
	CollectionCode string `json:"collection_code" validate:"omitempty,entitycode"`
}

type UpdateThingReq struct {
	Headline    string   `json:"thing_headline" validate:"omitempty,max=64"`
	Description string   `json:"thing_description" validate:"max=256"`
	Thumbnail   string   `json:"thing_thumbnail" validate:"omitempty,max=16,alphanum"`
	Fee         *float64 `json:"thing_fee" validate:"omitempty,gte=0"`
	Status      *string  `json:"thing_status" validate:"omitempty,oneof=ACTIVE INACTIVE TAKEN"`
	Available   *bool    `json:"thing_available"`
}
