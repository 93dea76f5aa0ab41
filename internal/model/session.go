package model

import "time"

// Turn is one question/answer exchange in a conversation.
type Turn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}
