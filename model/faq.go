package model

import "time"

// FAQ is a question asked on a thing by an invited user, answered by
// the owner. Hidden FAQs stay visible to the owner only.
type FAQ struct {
	Code       string    `json:"faq_code"`
	ThingCode  string    `json:"faq_thing"`
	Created    time.Time `json:"faq_created"`
	Questioner string    `json:"faq_questioner"`
	Question   string    `json:"faq_question"`
	Answer     string    `json:"faq_answer,omitempty"`
	Visible    bool      `json:"faq_is_visible"`
}

func (f *FAQ) Answered() bool { return f.Answer != "" }
