package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrBlobNotFound     = errors.New("blob not found")
	ErrInvalidPath      = errors.New("invalid path")
	ErrInvalidPrice     = errors.New("price must be a whole number")
	ErrStreamClosed     = errors.New("stream closed")
	ErrUploadFailed     = errors.New("image upload failed")
	ErrPublishFailed    = errors.New("failed to upload banner")
	ErrBannerIncomplete = errors.New("please fill all fields and select an image")
)

const (
	CollectionProducts = "Product"
	CollectionBanners  = "banners"
	CollectionUsers    = "User"
)

// Item is a listable catalog entry (product or banner).
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceMinor  int64  `json:"price_minor"`
	ImageURL    string `json:"image_url"`
	ActionLabel string `json:"action_label"`
	Available   bool   `json:"available"`
}

type Blob struct {
	Path        string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

type Banner struct {
	Item
	Grade   string `json:"grade"`
	Metrics string `json:"metrics"`
	UserID  string `json:"user_id"`
}

type BannerRequest struct {
	Name        string `json:"name" validate:"required"`
	Grade       string `json:"grade" validate:"required"`
	Price       string `json:"price" validate:"required"`
	Available   string `json:"available" validate:"required"`
	Metrics     string `json:"metrics" validate:"required"`
	ActionLabel string `json:"action_label" validate:"required"`
	Description string `json:"description" validate:"required"`

	Image       []byte `json:"-"`
	ContentType string `json:"-"`
}

// ListSnapshot replaces the whole collection; it is never a diff.
type ListSnapshot struct {
	Collection string    `json:"collection"`
	Items      []Item    `json:"items"`
	ReceivedAt time.Time `json:"received_at"`
}

type StreamEvent struct {
	Snapshot *ListSnapshot
	Err      error
}

type SnapshotStream interface {
	Events() <-chan StreamEvent
	Close() error
}

type DataStore interface {
	Subscribe(ctx context.Context, collection string) (SnapshotStream, error)
	Write(ctx context.Context, path string, value any) error
	Push(ctx context.Context, collection string, value any) (string, error)
	UploadBlob(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

type BannerService interface {
	Publish(ctx context.Context, req BannerRequest) (*Banner, error)
}
