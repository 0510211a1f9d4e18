package services

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/custodia-labs/docdex/internal/core/domain"
	"github.com/custodia-labs/docdex/internal/core/ports/driving"
	"github.com/custodia-labs/docdex/internal/logger"
)

// Ensure AnalyzeService implements the interface.
var _ driving.AnalyzeService = (*AnalyzeService)(nil)

// maxCodeDirs caps how many code directories a plan includes.
const maxCodeDirs = 5

// docDirNames are directory names treated as documentation roots.
var docDirNames = map[string]bool{
	"docs":          true,
	"doc":           true,
	"documentation": true,
	"wiki":          true,
}

// codeDirNames are conventional source roots considered for code ingestion.
var codeDirNames = map[string]bool{
	"src":      true,
	"lib":      true,
	"app":      true,
	"server":   true,
	"backend":  true,
	"frontend": true,
}

// frameworkMarkers maps root-level marker files to build systems.
var frameworkMarkers = map[string]string{
	"go.mod":           "go",
	"package.json":     "npm",
	"Cargo.toml":       "rust",
	"pyproject.toml":   "python",
	"requirements.txt": "python",
	"pom.xml":          "java",
	"build.gradle":     "java",
}

// AnalyzeService surveys repositories before ingesting them.
type AnalyzeService struct {
	connectorFor ConnectorFactory
	includeCode  bool
}

// NewAnalyzeService creates a new analyze service. includeCode adds
// code directories to ingestion plans.
func NewAnalyzeService(connectorFor ConnectorFactory, includeCode bool) *AnalyzeService {
	return &AnalyzeService{
		connectorFor: connectorFor,
		includeCode:  includeCode,
	}
}

// Survey inspects the repository tree and reports its
// documentation-relevant structure.
func (s *AnalyzeService) Survey(ctx context.Context, repo domain.RepositoryID) (*domain.RepoSurvey, error) {
	logger.Section("Analyze")

	tree, err := s.listTree(ctx, repo)
	if err != nil {
		return nil, err
	}

	survey := buildSurvey(repo, tree)
	logger.Info("Survey of %s: %d markdown, %d code files, %d doc dirs, %d READMEs",
		repo, survey.MarkdownCount, survey.CodeFileCount, len(survey.DocDirs), len(survey.ReadmePaths))
	return survey, nil
}

// Plan turns a survey into a prioritised ingestion plan.
func (s *AnalyzeService) Plan(ctx context.Context, repo domain.RepositoryID) (*domain.IngestionPlan, error) {
	logger.Section("Analyze")

	tree, err := s.listTree(ctx, repo)
	if err != nil {
		return nil, err
	}

	plan := buildPlan(repo, tree, s.includeCode)
	logger.Info("Plan for %s: %d entries", repo, len(plan.Entries))
	return plan, nil
}

func (s *AnalyzeService) listTree(ctx context.Context, repo domain.RepositoryID) ([]domain.TreeEntry, error) {
	connector, err := s.connectorFor(repo)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	tree, err := connector.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tree: %w", err)
	}
	return tree, nil
}

// buildSurvey derives the survey from a repository tree listing.
func buildSurvey(repo domain.RepositoryID, tree []domain.TreeEntry) *domain.RepoSurvey {
	survey := &domain.RepoSurvey{Repo: repo}
	seenFrameworks := make(map[string]bool)

	for _, entry := range tree {
		if entry.IsDir {
			if docDirNames[strings.ToLower(path.Base(entry.Path))] {
				survey.DocDirs = append(survey.DocDirs, entry.Path)
			}
			continue
		}

		base := path.Base(entry.Path)
		if strings.HasPrefix(strings.ToLower(base), "readme") {
			survey.ReadmePaths = append(survey.ReadmePaths, entry.Path)
		}

		// Marker files count only at the repository root.
		if framework, ok := frameworkMarkers[base]; ok && !strings.Contains(entry.Path, "/") {
			if !seenFrameworks[framework] {
				seenFrameworks[framework] = true
				survey.Frameworks = append(survey.Frameworks, framework)
			}
		}

		if domain.DocTypeForPath(entry.Path) == domain.DocTypeMarkdown {
			survey.MarkdownCount++
		}
		if domain.LanguageForPath(entry.Path) != "" {
			survey.CodeFileCount++
		}
	}

	sort.Strings(survey.DocDirs)
	sort.Strings(survey.ReadmePaths)
	sort.Strings(survey.Frameworks)
	return survey
}

// buildPlan derives a prioritised ingestion plan from a tree listing.
// READMEs come first, then documentation directories, then markdown
// outside them, then code directories when code ingestion is enabled.
func buildPlan(repo domain.RepositoryID, tree []domain.TreeEntry, includeCode bool) *domain.IngestionPlan {
	survey := buildSurvey(repo, tree)
	plan := &domain.IngestionPlan{Repo: repo}
	covered := make(map[string]bool)

	for _, readme := range survey.ReadmePaths {
		plan.Entries = append(plan.Entries, domain.PlanEntry{
			Path: readme, Priority: 1, Reason: "README file",
		})
		covered[readme] = true
	}

	for _, dir := range survey.DocDirs {
		count := 0
		prefix := dir + "/"
		for _, entry := range tree {
			if !entry.IsDir && strings.HasPrefix(entry.Path, prefix) &&
				domain.DocTypeForPath(entry.Path) == domain.DocTypeMarkdown {
				count++
				covered[entry.Path] = true
			}
		}
		plan.Entries = append(plan.Entries, domain.PlanEntry{
			Path: dir, Priority: 2,
			Reason: fmt.Sprintf("Documentation directory with %d files", count),
		})
	}

	for _, entry := range tree {
		if entry.IsDir || covered[entry.Path] {
			continue
		}
		if domain.DocTypeForPath(entry.Path) == domain.DocTypeMarkdown {
			plan.Entries = append(plan.Entries, domain.PlanEntry{
				Path: entry.Path, Priority: 3, Reason: "Markdown file",
			})
		}
	}

	if includeCode {
		for _, dir := range codeDirectories(tree) {
			plan.Entries = append(plan.Entries, domain.PlanEntry{
				Path: dir.path, Priority: 4,
				Reason: fmt.Sprintf("Code directory with %d source files", dir.files),
			})
		}
	}

	sort.SliceStable(plan.Entries, func(i, j int) bool {
		if plan.Entries[i].Priority != plan.Entries[j].Priority {
			return plan.Entries[i].Priority < plan.Entries[j].Priority
		}
		return plan.Entries[i].Path < plan.Entries[j].Path
	})
	return plan
}

type codeDir struct {
	path  string
	files int
}

// codeDirectories returns conventional top-level source roots that
// actually contain code. The largest directories win the plan slots.
func codeDirectories(tree []domain.TreeEntry) []codeDir {
	counts := make(map[string]int)
	for _, entry := range tree {
		if entry.IsDir || domain.LanguageForPath(entry.Path) == "" {
			continue
		}
		root, _, found := strings.Cut(entry.Path, "/")
		if found && codeDirNames[strings.ToLower(root)] {
			counts[root]++
		}
	}

	dirs := make([]codeDir, 0, len(counts))
	for dir, count := range counts {
		dirs = append(dirs, codeDir{path: dir, files: count})
	}
	sort.Slice(dirs, func(i, j int) bool {
		if dirs[i].files != dirs[j].files {
			return dirs[i].files > dirs[j].files
		}
		return dirs[i].path < dirs[j].path
	})
	if len(dirs) > maxCodeDirs {
		dirs = dirs[:maxCodeDirs]
	}
	return dirs
}
