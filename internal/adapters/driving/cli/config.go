package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change docdex configuration.

Keys use dot notation, for example:

  docdex config set embedding.provider ollama
  docdex config set retrieval.top_k 8
  docdex config set github.token

Secret keys prompt for their value when none is given, so tokens stay
out of the shell history.`,
	PreRunE: ensureConfig,
	RunE:    runConfigList,
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show current configuration",
	PreRunE: ensureConfig,
	RunE:    runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:     "get [key]",
	Short:   "Print one configuration value",
	Args:    cobra.ExactArgs(1),
	PreRunE: ensureConfig,
	RunE:    runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:     "set [key] [value]",
	Short:   "Change one configuration value",
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: ensureConfig,
	RunE:    runConfigSet,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// secretKeys holds config keys whose values are masked on output and
// prompted for without echo.
var secretKeys = map[string]bool{
	"embedding.api_key": true,
	"llm.api_key":       true,
	"github.token":      true,
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider)
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskedOrUnset(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider)
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskedOrUnset(settings.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", settings.Chunking.ChunkOverlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Max queries: %d\n", settings.Retrieval.MaxQueries)
	cmd.Printf("  Expand: %t\n", settings.Retrieval.Expand)
	cmd.Println()

	cmd.Println("[GitHub]")
	cmd.Printf("  Token: %s\n", maskedOrUnset(settings.GitHub.Token))
	cmd.Println()

	if configStore != nil {
		cmd.Printf("Config file: %s\n", configStore.Path())
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	key := strings.ToLower(args[0])
	value, err := configValue(settings, key)
	if err != nil {
		return err
	}

	if secretKeys[key] {
		value = maskedOrUnset(value)
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := strings.ToLower(args[0])

	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case secretKeys[key]:
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword()
		cmd.Println()
		if value == "" {
			return errors.New("empty value")
		}
	default:
		return fmt.Errorf("no value given for %s", key)
	}

	if err := applyConfigValue(key, value); err != nil {
		return err
	}

	shown := value
	if secretKeys[key] {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

// configValue reads one settings field by its dot-notation key.
func configValue(settings *domain.AppSettings, key string) (string, error) {
	switch key {
	case "data_dir":
		return settings.DataDir, nil
	case "verbose":
		return strconv.FormatBool(settings.Verbose), nil
	case "embedding.provider":
		return settings.Embedding.Provider.String(), nil
	case "embedding.model":
		return settings.Embedding.Model, nil
	case "embedding.base_url":
		return settings.Embedding.BaseURL, nil
	case "embedding.api_key":
		return settings.Embedding.APIKey, nil
	case "llm.provider":
		return settings.LLM.Provider.String(), nil
	case "llm.model":
		return settings.LLM.Model, nil
	case "llm.base_url":
		return settings.LLM.BaseURL, nil
	case "llm.api_key":
		return settings.LLM.APIKey, nil
	case "llm.max_tokens":
		return strconv.Itoa(settings.LLM.MaxTokens), nil
	case "chunking.chunk_size":
		return strconv.Itoa(settings.Chunking.ChunkSize), nil
	case "chunking.chunk_overlap":
		return strconv.Itoa(settings.Chunking.ChunkOverlap), nil
	case "retrieval.top_k":
		return strconv.Itoa(settings.Retrieval.TopK), nil
	case "retrieval.max_queries":
		return strconv.Itoa(settings.Retrieval.MaxQueries), nil
	case "retrieval.expand":
		return strconv.FormatBool(settings.Retrieval.Expand), nil
	case "github.token":
		return settings.GitHub.Token, nil
	}
	return "", unknownKeyError(key)
}

// applyConfigValue writes one settings field. Provider switches go
// through the settings service so the model falls back to the
// provider's default.
func applyConfigValue(key, value string) error {
	switch key {
	case "embedding.provider":
		return settingsService.SetEmbeddingProvider(domain.AIProvider(value), "", "")
	case "llm.provider":
		return settingsService.SetLLMProvider(domain.AIProvider(value), "", "")
	case "github.token":
		return settingsService.SetGitHubToken(value)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	switch key {
	case "data_dir":
		settings.DataDir = value
	case "verbose":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s wants true or false: %w", key, err)
		}
		settings.Verbose = parsed
	case "embedding.model":
		settings.Embedding.Model = value
	case "embedding.base_url":
		settings.Embedding.BaseURL = value
	case "embedding.api_key":
		settings.Embedding.APIKey = value
	case "llm.model":
		settings.LLM.Model = value
	case "llm.base_url":
		settings.LLM.BaseURL = value
	case "llm.api_key":
		settings.LLM.APIKey = value
	case "llm.max_tokens":
		parsed, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		settings.LLM.MaxTokens = parsed
	case "chunking.chunk_size":
		parsed, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		settings.Chunking.ChunkSize = parsed
	case "chunking.chunk_overlap":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			return fmt.Errorf("%s wants a non-negative integer", key)
		}
		settings.Chunking.ChunkOverlap = parsed
	case "retrieval.top_k":
		parsed, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		settings.Retrieval.TopK = parsed
	case "retrieval.max_queries":
		parsed, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		settings.Retrieval.MaxQueries = parsed
	case "retrieval.expand":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s wants true or false: %w", key, err)
		}
		settings.Retrieval.Expand = parsed
	default:
		return unknownKeyError(key)
	}

	return settingsService.Save(settings)
}

// configKeys lists every key configValue understands, for error text.
func configKeys() []string {
	keys := []string{
		"data_dir", "verbose",
		"embedding.provider", "embedding.model", "embedding.base_url", "embedding.api_key",
		"llm.provider", "llm.model", "llm.base_url", "llm.api_key", "llm.max_tokens",
		"chunking.chunk_size", "chunking.chunk_overlap",
		"retrieval.top_k", "retrieval.max_queries", "retrieval.expand",
		"github.token",
	}
	sort.Strings(keys)
	return keys
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(configKeys(), ", "))
}

func positiveInt(key, value string) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%s wants a positive integer", key)
	}
	return parsed, nil
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func maskedOrUnset(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
