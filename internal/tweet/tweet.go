package tweet

import (
	"strings"

	"gorm.io/gorm"
)

// Tweet is a short text post owned by a single account.
type Tweet struct {
	gorm.Model
	Content  string `json:"content" gorm:"type:text;not null"`
	AuthorID uint   `json:"authorId" gorm:"index;not null"`
}

func NewTweet(authorID uint, content string) *Tweet {
	return &Tweet{AuthorID: authorID, Content: strings.TrimSpace(content)}
}
