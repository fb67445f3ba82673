package tweet

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mehmetcc/videotube-auth-service/internal/utils"
)

type TweetService interface {
	Create(ctx context.Context, authorID uint, content string) (*Tweet, error)
	ListByAuthor(ctx context.Context, authorID uint, page Page) (*TweetPage, error)
	Update(ctx context.Context, authorID, tweetID uint, content string) (*Tweet, error)
	Delete(ctx context.Context, authorID, tweetID uint) error
}

type tweetService struct {
	repo   TweetRepository
	logger *zap.Logger
}

func NewTweetService(repo TweetRepository, logger *zap.Logger) TweetService {
	return &tweetService{repo: repo, logger: logger}
}

func (s *tweetService) Create(ctx context.Context, authorID uint, content string) (*Tweet, error) {
	if strings.TrimSpace(content) == "" {
		return nil, utils.BadRequest("tweet content is required")
	}
	tweet := NewTweet(authorID, content)
	if err := s.repo.Create(ctx, tweet); err != nil {
		s.logger.Error("failed to create tweet", zap.Uint("author", authorID), zap.Error(err))
		return nil, utils.Internal("could not create tweet", err)
	}
	return tweet, nil
}

func (s *tweetService) ListByAuthor(ctx context.Context, authorID uint, page Page) (*TweetPage, error) {
	page = page.Normalize()
	tweets, total, err := s.repo.ListByAuthor(ctx, authorID, page)
	if err != nil {
		s.logger.Error("failed to list tweets", zap.Uint("author", authorID), zap.Error(err))
		return nil, utils.Internal("could not fetch tweets", err)
	}
	return newTweetPage(tweets, total, page), nil
}

// Update replaces the content of a tweet the author owns.
func (s *tweetService) Update(ctx context.Context, authorID, tweetID uint, content string) (*Tweet, error) {
	if strings.TrimSpace(content) == "" {
		return nil, utils.BadRequest("tweet content is required")
	}
	if _, err := s.owned(ctx, authorID, tweetID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateContent(ctx, tweetID, strings.TrimSpace(content)); err != nil {
		return nil, s.translate("failed to update tweet", tweetID, err)
	}
	tweet, err := s.repo.ReadByID(ctx, tweetID)
	if err != nil {
		return nil, s.translate("failed to read updated tweet", tweetID, err)
	}
	return tweet, nil
}

func (s *tweetService) Delete(ctx context.Context, authorID, tweetID uint) error {
	if _, err := s.owned(ctx, authorID, tweetID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tweetID); err != nil {
		return s.translate("failed to delete tweet", tweetID, err)
	}
	return nil
}

func (s *tweetService) owned(ctx context.Context, authorID, tweetID uint) (*Tweet, error) {
	tweet, err := s.repo.ReadByID(ctx, tweetID)
	if err != nil {
		return nil, s.translate("failed to read tweet", tweetID, err)
	}
	if tweet.AuthorID != authorID {
		return nil, utils.Forbidden("tweet belongs to another user")
	}
	return tweet, nil
}

func (s *tweetService) translate(msg string, id uint, err error) error {
	if errors.Is(err, ErrTweetNotFound) {
		return utils.NotFound("tweet does not exist").WithCause(err)
	}
	s.logger.Error(msg, zap.Uint("id", id), zap.Error(err))
	return utils.Internal("could not access tweet", err)
}
