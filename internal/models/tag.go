package models

type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"uniqueIndex;size:50;not null" json:"title"`
}

// TagSummary is a tag with the number of live questions carrying it.
type TagSummary struct {
	Title         string `json:"title"`
	QuestionCount int64  `json:"question_count"`
}
