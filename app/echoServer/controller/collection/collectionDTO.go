package collection

type CreateCollectionReq struct {
	Headline    string `json:"collection_headline" validate:"required,max=64"`
	Description string `json:"collection_description" validate:"max=256"`
	Thumbnail   string `json:"collection_thumbnail" validate:"omitempty,max=16,alphanum"`
	Hero        string `json:"collection_hero" validate:"omitempty,max=16,alphanum"`
	ThemeCode   string `json:"collection_theme" validate:"omitempty,entitycode"`
}

type UpdateCollectionReq struct {
	Headline    string  `json:"collection_headline" validate:"omitempty,max=64"`
	Description string  `json:"collection_description" validate:"max=256"`
	Thumbnail   string  `json:"collection_thumbnail" validate:"omitempty,max=16,alphanum"`
	Hero        string  `json:"collection_hero" validate:"omitempty,max=16,alphanum"`
	Status      *string `json:"collection_status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	ThemeCode   string  `json:"collection_theme" validate:"omitempty,entitycode"`
}

type InviteReq struct {
	Email string `json:"email" validate:"required,email"`
}
