package faq

type AskReq struct {
	Question string `json:"question" validate:"required,max=512"`
}

type AnswerReq struct {
	Answer string `json:"answer" validate:"required,max=1024"`
}
