package services

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driven"
	"github.com/custodia-labs/docdex/internal/core/ports/driving"
)

// Operating system identifiers.
const (
	osDarwin  = "darwin"
	osLinux   = "linux"
	osWindows = "windows"
)

// Ensure ResultActionService implements the interface.
var _ driving.ResultActionService = (*ResultActionService)(nil)

// ResultActionService provides actions on retrieval results.
type ResultActionService struct {
	ledger driven.DocumentStore
}

// NewResultActionService creates a new result action service.
func NewResultActionService(ledger driven.DocumentStore) *ResultActionService {
	return &ResultActionService{ledger: ledger}
}

// CopyToClipboard copies the result's content to the system clipboard.
func (s *ResultActionService) CopyToClipboard(_ context.Context, result *domain.RetrievalResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", domain.ErrInvalidInput)
	}
	return copyToClipboard(result.Content)
}

// OpenSource opens the result's source location in the default
// application. The indexed URI wins when present; otherwise the
// location is rebuilt from the repository's ledger record.
func (s *ResultActionService) OpenSource(ctx context.Context, result *domain.RetrievalResult) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", domain.ErrInvalidInput)
	}

	if uri := result.Metadata["uri"]; uri != "" {
		return openTarget(convertToOpenableURL(uri))
	}

	record, err := s.ledger.GetRepository(ctx, result.Repo)
	if err != nil {
		return fmt.Errorf("load repository: %w", err)
	}
	return openTarget(sourceTarget(record, result))
}

// sourceTarget builds an openable URL or path from the ledger record.
func sourceTarget(record *domain.Repository, result *domain.RetrievalResult) string {
	if record.Owner != "" {
		// HEAD resolves to the default branch on github.com.
		url := fmt.Sprintf("https://github.com/%s/%s/blob/HEAD/%s", record.Owner, record.Name, result.Path)
		if result.LineStart > 0 {
			url += fmt.Sprintf("#L%d", result.LineStart)
		}
		return url
	}
	return filepath.Join(record.URL, result.Path)
}

// convertToOpenableURL converts indexed URIs to browser-openable URLs.
func convertToOpenableURL(uri string) string {
	// GitHub URIs: github://owner/repo/blob/branch/path -> https://github.com/owner/repo/blob/branch/path
	if strings.HasPrefix(uri, "github://") {
		return "https://github.com/" + strings.TrimPrefix(uri, "github://")
	}

	// File URIs: file:///path/to/file -> /path/to/file (for local opening)
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}

	// Anything else passes through as-is
	return uri
}

// copyToClipboard copies text to the system clipboard using OS-specific commands.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("pbcopy")
	case osLinux:
		// Try xclip first, fall back to xsel
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("xsel"); err == nil {
			cmd = exec.Command("xsel", "--clipboard", "--input")
		} else {
			return fmt.Errorf("no clipboard utility found (install xclip or xsel)")
		}
	case osWindows:
		cmd = exec.Command("cmd", "/c", "clip")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// openTarget opens a URL or path using the system default handler.
func openTarget(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.Command("open", target)
	case osLinux:
		cmd = exec.Command("xdg-open", target)
	case osWindows:
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
