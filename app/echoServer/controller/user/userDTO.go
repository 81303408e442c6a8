package user

type UpdateUserReq struct {
	Name      string `json:"user_name" validate:"omitempty,max=64"`
	Headline  string `json:"user_headline" validate:"omitempty,max=64"`
	Thumbnail string `json:"user_thumbnail" validate:"omitempty,max=16,alphanum"`
}
