package model

import "time"

type CollectionStatus string

const (
	CollectionActive   CollectionStatus = "ACTIVE"
	CollectionInactive CollectionStatus = "INACTIVE"
)

type Collection struct {
	Code        string           `json:"collection_code"`
	Owner       string           `json:"collection_owner"`
	Created     time.Time        `json:"collection_created"`
	Headline    string           `json:"collection_headline"`
	Description string           `json:"collection_description,omitempty"`
	Thumbnail   string           `json:"collection_thumbnail,omitempty"`
	Hero        string           `json:"collection_hero,omitempty"`
	Status      CollectionStatus `json:"collection_status"`
	ThemeCode   string           `json:"collection_theme"`
	Things      []string         `json:"collection_things"`
	Invites     []string         `json:"collection_invites"`
}

func (c *Collection) IsOwner(userCode string) bool { return c.Owner == userCode }

func (c *Collection) IsInvited(userCode string) bool {
	for _, u := range c.Invites {
		if u == userCode {
			return true
		}
	}
	return false
}

func (c *Collection) CanView(userCode string) bool {
	return c.IsOwner(userCode) || c.IsInvited(userCode)
}
