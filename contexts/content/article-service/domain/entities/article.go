package entities

import "time"

// Article is a sample owned collection. Contributors holds the user ids
// allowed to mutate the record through the ownership branch of the
// authorization engine.
type Article struct {
	ArticleID    string    `json:"article_id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Contributors []string  `json:"contributors"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a Article) HasContributor(userID string) bool {
	for _, contributor := range a.Contributors {
		if contributor == userID {
			return true
		}
	}
	return false
}
