package identity

import (
	"context"

	"lorryadmin/internal/domain"
)

// ChooserResult is what the external account chooser handed back to the
// rendering layer.
type ChooserResult struct {
	Token     string
	Cancelled bool
}

type chooserLauncher struct {
	available bool
	result    ChooserResult
}

// NewChooserLauncher replays a chooser result the rendering layer already
// collected.
func NewChooserLauncher(available bool, result ChooserResult) domain.FederatedLauncher {
	return &chooserLauncher{available: available, result: result}
}

func (l *chooserLauncher) Available() bool {
	return l.available
}

func (l *chooserLauncher) Launch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.result.Cancelled || l.result.Token == "" {
		return "", domain.ErrFederatedCancelled
	}
	return l.result.Token, nil
}
