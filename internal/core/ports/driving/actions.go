package driving

import (
	"context"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// ResultActionService provides user actions on retrieval results.
type ResultActionService interface {
	// CopyToClipboard copies the result's content to the system
	// clipboard.
	CopyToClipboard(ctx context.Context, result *domain.RetrievalResult) error

	// OpenSource opens the result's source location in the default
	// application. Hosted repositories resolve to a web URL.
	OpenSource(ctx context.Context, result *domain.RetrievalResult) error
}
