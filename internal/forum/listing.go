package forum

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

const (
	DefaultQuestionsPageSize = 20
	DefaultAnswersPageSize   = 30
)

// SortKey selects the order of a question listing.
type SortKey string

const (
	SortRecency SortKey = "recency"
	SortRating  SortKey = "rating"
)

// Every order ends on the primary key so that equal ratings or timestamps
// still paginate reproducibly.
var questionOrder = map[SortKey]string{
	SortRecency: "questions.created_at DESC, questions.id DESC",
	SortRating:  "questions.rating DESC, questions.id DESC",
}

const answerOrder = "answers.rating DESC, answers.created_at DESC, answers.id DESC"

// ParseSortKey maps a query value to a SortKey; empty means recency.
func ParseSortKey(raw string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return SortRecency, nil
	}
	if _, ok := questionOrder[key]; !ok {
		return "", apperrors.ValidationError("sort must be recency or rating").
			WithFields(map[string]string{"sort": "sort must be recency or rating"})
	}
	return key, nil
}

// ParsePage reads a 1-indexed page number. Missing, non-integer and
// non-positive values fall back to page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Page is one page of an ordered listing.
type Page[T any] struct {
	Items      []T     `json:"items"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
	TotalItems int64   `json:"total_items"`
	Sort       SortKey `json:"sort,omitempty"`
	Tag        string  `json:"tag,omitempty"`
}

// Window clamps page to [1, totalPages] and returns the row offset of the
// clamped page. An empty collection still has one (empty) page.
func Window(total int64, page, size int) (current, totalPages, offset int) {
	totalPages = int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}
	current = page
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}
	return current, totalPages, (current - 1) * size
}

type QuestionQuery struct {
	// Tag restricts the listing to questions carrying this tag.
	Tag string
	// AuthorID restricts the listing to one author's questions; 0 means any.
	AuthorID uint
	Sort     SortKey
	Page     int
	PageSize int
}

// ListQuestions returns one page of questions, filtered and ordered by q.
// The page count is derived from the filtered total.
func (s *Service) ListQuestions(ctx context.Context, q QuestionQuery) (*Page[models.Question], error) {
	sortKey, err := ParseSortKey(string(q.Sort))
	if err != nil {
		return nil, err
	}
	size := q.PageSize
	if size < 1 {
		size = DefaultQuestionsPageSize
	}

	db := s.db.WithContext(ctx)
	var filters []func(*gorm.DB) *gorm.DB

	tagTitle := normalizeTag(q.Tag)
	if tagTitle != "" {
		var tag models.Tag
		err := db.Where("title = ?", tagTitle).Take(&tag).Error
		if isNotFound(err) {
			return nil, apperrors.NotFoundError("tag not found").WithContext("tag", tagTitle)
		}
		if err != nil {
			return nil, apperrors.InternalError("failed to load tag", err)
		}
		tagged := s.db.WithContext(ctx).Table("question_tags").Select("question_id").Where("tag_id = ?", tag.ID)
		filters = append(filters, func(tx *gorm.DB) *gorm.DB {
			return tx.Where("questions.id IN (?)", tagged)
		})
	}
	if q.AuthorID != 0 {
		authorID := q.AuthorID
		filters = append(filters, func(tx *gorm.DB) *gorm.DB {
			return tx.Where("questions.author_id = ?", authorID)
		})
	}

	var total int64
	if err := db.Model(&models.Question{}).Scopes(filters...).Count(&total).Error; err != nil {
		return nil, apperrors.InternalError("failed to count questions", err)
	}

	current, totalPages, offset := Window(total, q.Page, size)

	items := make([]models.Question, 0, size)
	err = db.Scopes(filters...).
		Preload("Author").
		Preload("Tags").
		Order(questionOrder[sortKey]).
		Offset(offset).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.InternalError("failed to fetch questions", err)
	}

	if err := s.attachAnswerCounts(ctx, items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Author = items[i].Author.Public()
	}

	return &Page[models.Question]{
		Items:      items,
		Page:       current,
		PageSize:   size,
		TotalPages: totalPages,
		TotalItems: total,
		Sort:       sortKey,
		Tag:        tagTitle,
	}, nil
}

// ListAnswers returns one page of a question's answers, best rated first
// and newest first among equals.
func (s *Service) ListAnswers(ctx context.Context, questionID uint, page, pageSize int) (*Page[models.Answer], error) {
	size := pageSize
	if size < 1 {
		size = DefaultAnswersPageSize
	}

	db := s.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&models.Question{}).Where("id = ?", questionID).Count(&exists).Error; err != nil {
		return nil, apperrors.InternalError("failed to load question", err)
	}
	if exists == 0 {
		return nil, apperrors.NotFoundError("question not found").WithContext("id", questionID)
	}

	var total int64
	if err := db.Model(&models.Answer{}).Where("question_id = ?", questionID).Count(&total).Error; err != nil {
		return nil, apperrors.InternalError("failed to count answers", err)
	}

	current, totalPages, offset := Window(total, page, size)

	items := make([]models.Answer, 0, size)
	err := db.Where("question_id = ?", questionID).
		Preload("Author").
		Order(answerOrder).
		Offset(offset).
		Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, apperrors.InternalError("failed to fetch answers", err)
	}
	for i := range items {
		if items[i].Author != nil {
			public := items[i].Author.Public()
			items[i].Author = &public
		}
	}

	return &Page[models.Answer]{
		Items:      items,
		Page:       current,
		PageSize:   size,
		TotalPages: totalPages,
		TotalItems: total,
	}, nil
}

// ListTags returns every tag with its number of live questions, most used first.
func (s *Service) ListTags(ctx context.Context) ([]models.TagSummary, error) {
	tags := make([]models.TagSummary, 0)
	err := s.db.WithContext(ctx).
		Table("tags").
		Select("tags.title AS title, COUNT(questions.id) AS question_count").
		Joins("LEFT JOIN question_tags ON question_tags.tag_id = tags.id").
		Joins("LEFT JOIN questions ON questions.id = question_tags.question_id AND questions.deleted_at IS NULL").
		Group("tags.id, tags.title").
		Order("question_count DESC, tags.title ASC").
		Scan(&tags).Error
	if err != nil {
		return nil, apperrors.InternalError("failed to list tags", err)
	}
	return tags, nil
}

type answerCount struct {
	QuestionID uint
	Count      int64
}

func (s *Service) attachAnswerCounts(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	var counts []answerCount
	err := s.db.WithContext(ctx).
		Model(&models.Answer{}).
		Select("question_id, COUNT(*) AS count").
		Where("question_id IN ?", ids).
		Group("question_id").
		Scan(&counts).Error
	if err != nil {
		return apperrors.InternalError("failed to count answers", err)
	}

	byQuestion := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byQuestion[c.QuestionID] = c.Count
	}
	for i := range questions {
		questions[i].AnswerCount = byQuestion[questions[i].ID]
	}
	return nil
}
