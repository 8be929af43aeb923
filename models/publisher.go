package models

import "time"

// Publisher owns a set of editors and journalists. A user may belong to several publishers.
type Publisher struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	Website       string    `bson:"website,omitempty" json:"website,omitempty"`
	EditorIDs     []string  `bson:"editorIds" json:"-"`
	JournalistIDs []string  `bson:"journalistIds" json:"-"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

func (p *Publisher) HasEditor(userID string) bool {
	return contains(p.EditorIDs, userID)
}

func (p *Publisher) HasJournalist(userID string) bool {
	return contains(p.JournalistIDs, userID)
}

type Category struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
