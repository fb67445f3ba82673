package tweet

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrTweetNotFound        = errors.New("tweet not found")
	ErrTweetNotCreated      = errors.New("tweet not created")
	ErrTweetNotUpdated      = errors.New("tweet not updated")
	ErrTweetNotDeleted      = errors.New("tweet not deleted")
	ErrUnresponsiveDatabase = errors.New("error occurred during access to tweets table")
)

type TweetRepository interface {
	Create(ctx context.Context, tweet *Tweet) error
	ReadByID(ctx context.Context, id uint) (*Tweet, error)
	ListByAuthor(ctx context.Context, authorID uint, page Page) ([]Tweet, int64, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	Delete(ctx context.Context, id uint) error
}

type tweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *Tweet) error {
	if err := r.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return fmt.Errorf("%w: %w", ErrTweetNotCreated, err)
	}
	return nil
}

func (r *tweetRepository) ReadByID(ctx context.Context, id uint) (*Tweet, error) {
	var tweet Tweet
	err := r.db.WithContext(ctx).First(&tweet, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTweetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresponsiveDatabase, err)
	}
	return &tweet, nil
}

// ListByAuthor returns one page of the author's tweets and the total count.
func (r *tweetRepository) ListByAuthor(ctx context.Context, authorID uint, page Page) ([]Tweet, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&Tweet{}).
		Where("author_id = ?", authorID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnresponsiveDatabase, err)
	}

	var tweets []Tweet
	err := query.
		Order(page.orderClause()).
		Limit(page.Limit).
		Offset(page.offset()).
		Find(&tweets).
		Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnresponsiveDatabase, err)
	}
	return tweets, total, nil
}

func (r *tweetRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	res := r.db.WithContext(ctx).
		Model(&Tweet{}).
		Where("id = ?", id).
		Update("content", content)
	if res.Error != nil {
		return fmt.Errorf("%w: %w", ErrTweetNotUpdated, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTweetNotFound
	}
	return nil
}

func (r *tweetRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Tweet{}, id)
	if res.Error != nil {
		return fmt.Errorf("%w: %w", ErrTweetNotDeleted, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTweetNotFound
	}
	return nil
}
