// Package banner publishes home-screen banners: upload the image, then push
// the record into the banners collection.
package banner

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"lorryadmin/internal/domain"
	"lorryadmin/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type Service struct {
	store    domain.DataStore
	sessions domain.SessionStore
	log      logger.Logger
	newID    func() string
}

func NewService(store domain.DataStore, sessions domain.SessionStore, log logger.Logger) *Service {
	return &Service{
		store:    store,
		sessions: sessions,
		log:      log,
		newID:    uuid.NewString,
	}
}

func (s *Service) Publish(ctx context.Context, req domain.BannerRequest) (*domain.Banner, error) {
	if err := checkComplete(req); err != nil {
		return nil, err
	}

	price, err := strconv.ParseInt(strings.TrimSpace(req.Price), 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidPrice
	}

	session, err := s.sessions.CurrentSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("banner session: %w", err)
	}
	if !session.IsAuthenticated() {
		return nil, domain.ErrUnauthorized
	}

	id := s.newID()
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := s.store.UploadBlob(ctx, domain.CollectionBanners+"/"+id, req.Image, contentType)
	if err != nil {
		s.log.Error("banner: image upload failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
	}

	b := &domain.Banner{
		Item: domain.Item{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			PriceMinor:  price,
			ImageURL:    url,
			ActionLabel: req.ActionLabel,
			Available:   ParseAvailable(req.Available),
		},
		Grade:   req.Grade,
		Metrics: req.Metrics,
		UserID:  session.UserID,
	}

	if err := s.store.Write(ctx, domain.CollectionBanners+"/"+id, b); err != nil {
		s.log.Error("banner: write failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrPublishFailed, err)
	}

	s.log.Info("banner: published", "id", id, "user_id", session.UserID)
	return b, nil
}

// ParseAvailable accepts Yes/yes/YES/1 as true; anything else is false.
func ParseAvailable(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "Yes", "yes", "YES", "1":
		return true
	default:
		return false
	}
}

func checkComplete(req domain.BannerRequest) error {
	trimmed := req
	trimmed.Name = strings.TrimSpace(req.Name)
	trimmed.Grade = strings.TrimSpace(req.Grade)
	trimmed.Price = strings.TrimSpace(req.Price)
	trimmed.Available = strings.TrimSpace(req.Available)
	trimmed.Metrics = strings.TrimSpace(req.Metrics)
	trimmed.ActionLabel = strings.TrimSpace(req.ActionLabel)
	trimmed.Description = strings.TrimSpace(req.Description)

	if err := validate.Struct(trimmed); err != nil || len(req.Image) == 0 {
		return domain.ErrBannerIncomplete
	}
	return nil
}
