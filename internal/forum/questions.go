package forum

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
	"github.com/emilythestrangee/askme/backend/internal/metrics"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

type NewQuestion struct {
	Title string   `json:"title" validate:"required,max=200"`
	Body  string   `json:"body" validate:"required,max=20000"`
	Tags  []string `json:"tags" validate:"dive,required,max=50"`
}

type NewAnswer struct {
	Body string `json:"body" validate:"required,max=20000"`
	// GuestName is the display name of an unauthenticated author. It is
	// ignored for logged-in authors.
	GuestName string `json:"guest_name" validate:"omitempty,min=2,max=50"`
}

// AskQuestion stores a new question by authorID, creating unknown tags.
func (s *Service) AskQuestion(ctx context.Context, authorID uint, in NewQuestion) (*models.Question, error) {
	if err := requireUser(authorID, "ask a question"); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Tags = normalizeTags(in.Tags)

	if err := s.validationError("invalid question", in); err != nil {
		return nil, err
	}
	if len(in.Tags) > s.maxTags {
		return nil, apperrors.ValidationError("invalid question").WithFields(map[string]string{
			"tags": "a question can have at most " + strconv.Itoa(s.maxTags) + " tags",
		})
	}

	now := s.clock.Now().UTC()
	question := models.Question{
		Title:     in.Title,
		Slug:      Slugify(in.Title),
		Body:      in.Body,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author models.User
		if err := tx.Select("id").Take(&author, authorID).Error; err != nil {
			if isNotFound(err) {
				return apperrors.PermissionDenied("unknown author")
			}
			return err
		}

		for _, title := range in.Tags {
			err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title"}}, DoNothing: true}).
				Create(&models.Tag{Title: title}).Error
			if err != nil {
				return err
			}
			var tag models.Tag
			if err := tx.Where("title = ?", title).Take(&tag).Error; err != nil {
				return err
			}
			question.Tags = append(question.Tags, tag)
		}

		return tx.Omit("Author").Create(&question).Error
	})
	if err != nil {
		return nil, storageError("failed to create question", err)
	}

	metrics.QuestionsCreated.Inc()
	s.log.Info().Uint("question_id", question.ID).Uint("author_id", authorID).Msg("question asked")

	return s.GetQuestion(ctx, question.ID)
}

// GetQuestion loads one question with its author, tags and answer count.
func (s *Service) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := s.db.WithContext(ctx).Preload("Author").Preload("Tags").Take(&question, id).Error
	if isNotFound(err) {
		return nil, apperrors.NotFoundError("question not found").WithContext("id", id)
	}
	if err != nil {
		return nil, apperrors.InternalError("failed to load question", err)
	}

	questions := []models.Question{question}
	if err := s.attachAnswerCounts(ctx, questions); err != nil {
		return nil, err
	}
	question = questions[0]
	question.Author = question.Author.Public()
	return &question, nil
}

// DeleteQuestion hides a question. Only its author may delete it; votes
// and answers are kept.
func (s *Service) DeleteQuestion(ctx context.Context, id, requesterID uint) error {
	if err := requireUser(requesterID, "delete a question"); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		err := forUpdate(tx).Select("id", "author_id").Take(&question, id).Error
		if isNotFound(err) {
			return apperrors.NotFoundError("question not found").WithContext("id", id)
		}
		if err != nil {
			return err
		}
		if question.AuthorID != requesterID {
			return apperrors.PermissionDenied("you can only delete your own questions")
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		return storageError("failed to delete question", err)
	}

	s.log.Info().Uint("question_id", id).Msg("question deleted")
	return nil
}

// SubmitAnswer adds an answer to questionID. authorID may be Anonymous, in
// which case in.GuestName is required and stored instead of an author.
func (s *Service) SubmitAnswer(ctx context.Context, questionID, authorID uint, in NewAnswer) (*models.Answer, error) {
	in.Body = strings.TrimSpace(in.Body)
	in.GuestName = strings.TrimSpace(in.GuestName)
	if authorID != Anonymous {
		in.GuestName = ""
	}

	if err := s.validationError("invalid answer", in); err != nil {
		return nil, err
	}
	if authorID == Anonymous && in.GuestName == "" {
		return nil, apperrors.ValidationError("invalid answer").WithFields(map[string]string{
			"guest_name": "guest_name is required when answering without an account",
		})
	}

	now := s.clock.Now().UTC()
	answer := models.Answer{
		QuestionID: questionID,
		GuestName:  in.GuestName,
		Body:       in.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if authorID != Anonymous {
		id := authorID
		answer.AuthorID = &id
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Question{}).Where("id = ?", questionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NotFoundError("question not found").WithContext("id", questionID)
		}
		return tx.Omit("Author").Create(&answer).Error
	})
	if err != nil {
		return nil, storageError("failed to create answer", err)
	}

	authorKind := "user"
	if answer.AuthorID == nil {
		authorKind = "guest"
	} else {
		var author models.User
		if err := s.db.WithContext(ctx).Take(&author, *answer.AuthorID).Error; err == nil {
			public := author.Public()
			answer.Author = &public
		}
	}

	metrics.AnswersCreated.WithLabelValues(authorKind).Inc()
	s.log.Info().
		Uint("question_id", questionID).
		Uint("answer_id", answer.ID).
		Str("author", authorKind).
		Msg("answer submitted")

	return &answer, nil
}

// Slugify derives a URL slug from a title, keeping letters and digits of
// any script.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	n := 0
	for _, r := range strings.ToLower(title) {
		if n >= 200 {
			break
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
			n++
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
			n++
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func normalizeTag(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), "-")
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping the
// first occurrence order.
func normalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		tag := normalizeTag(t)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
