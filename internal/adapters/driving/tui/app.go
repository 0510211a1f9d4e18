package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docdex/internal/core/domain"
)

// reposLoaded carries the repository list fetched at startup.
type reposLoaded struct {
	repos []domain.Repository
	err   error
}

// queryCompleted carries the outcome of an async retrieval query.
type queryCompleted struct {
	results []domain.RetrievalResult
	err     error
}

// App is the bubbletea model for the docdex TUI. It renders a single
// view: the repository picker, the query input, and the ranked result
// list with source provenance.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *Styles

	input textinput.Model

	repos     []domain.Repository
	repoIndex int

	results  []domain.RetrievalResult
	selected int

	status     string
	err        error
	searching  bool
	focusInput bool // true = typing a query, false = navigating results

	width  int
	height int
	ready  bool
}

// App must implement tea.Model to run under bubbletea.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrInvalidPorts)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	ti := textinput.New()
	ti.Placeholder = "Type a query..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     DefaultStyles(),
		input:      ti,
		status:     "Loading repositories...",
		focusInput: true,
	}, nil
}

// WithContext sets the context used for queries and result actions.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init starts the repository load alongside the cursor blink.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("docdex"),
		textinput.Blink,
		a.loadRepositories(),
	)
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case reposLoaded:
		a.handleReposLoaded(msg)
		return a, nil

	case queryCompleted:
		a.handleQueryCompleted(msg)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global bindings work in both modes.
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "tab":
		a.nextRepository()
		return a, nil
	}

	if msg.Type == tea.KeyEnter {
		if a.focusInput {
			return a, a.submitQuery()
		}
		// Results mode: Enter starts a new query.
		a.focusInput = true
		a.input.SetValue("")
		return a, a.input.Focus()
	}

	// Input mode: all remaining keys go to the text input.
	if a.focusInput {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	// Results mode.
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyUp:
		a.moveUp()
		return a, nil
	case tea.KeyDown:
		a.moveDown()
		return a, nil
	case tea.KeyEsc:
		a.focusInput = true
		return a, a.input.Focus()
	}

	switch msg.String() {
	case "k":
		a.moveUp()
	case "j":
		a.moveDown()
	case "c":
		a.copySelected()
	case "o":
		a.openSelected()
	case "q":
		return a, tea.Quit
	}

	return a, nil
}

// submitQuery validates the typed query and kicks off retrieval.
func (a *App) submitQuery() tea.Cmd {
	query := strings.TrimSpace(a.input.Value())
	if query == "" || a.searching {
		return nil
	}
	if len(a.repos) == 0 {
		a.status = "No repositories indexed. Run 'docdex ingest' first."
		return nil
	}

	a.searching = true
	a.err = nil
	a.status = "Searching..."
	a.focusInput = false
	a.input.Blur()

	return a.performQuery(query)
}

// performQuery executes a retrieval query against the current repository.
func (a *App) performQuery(query string) tea.Cmd {
	repo := a.currentRepository()
	return func() tea.Msg {
		results, err := a.ports.Retrieve.Query(a.ctx, repo, query, domain.RetrievalOptions{})
		return queryCompleted{results: results, err: err}
	}
}

// loadRepositories fetches the indexed repositories from the ledger.
func (a *App) loadRepositories() tea.Cmd {
	return func() tea.Msg {
		repos, err := a.ports.Collections.List(a.ctx)
		return reposLoaded{repos: repos, err: err}
	}
}

func (a *App) handleReposLoaded(msg reposLoaded) {
	if msg.err != nil {
		a.err = msg.err
		a.status = "Failed to load repositories"
		return
	}

	a.repos = msg.repos
	a.repoIndex = 0
	if len(a.repos) == 0 {
		a.status = "No repositories indexed. Run 'docdex ingest' first."
		return
	}
	a.status = fmt.Sprintf("%d repositories indexed", len(a.repos))
}

func (a *App) handleQueryCompleted(msg queryCompleted) {
	a.searching = false

	if msg.err != nil {
		a.err = msg.err
		a.status = "Query failed"
		a.focusInput = true
		a.input.Focus()
		return
	}

	a.err = nil
	a.results = msg.results
	a.selected = 0

	if len(msg.results) == 0 {
		a.status = "No results found."
		a.focusInput = true
		a.input.Focus()
		return
	}

	// Move to results mode so navigation keys act on the list.
	a.focusInput = false
	a.input.Blur()
	a.status = fmt.Sprintf("%d results", len(msg.results))
}

// nextRepository cycles to the next indexed repository. Results from
// the previous repository are cleared.
func (a *App) nextRepository() {
	if len(a.repos) < 2 {
		return
	}
	a.repoIndex = (a.repoIndex + 1) % len(a.repos)
	a.results = nil
	a.selected = 0
	a.status = "Repository: " + repoLabel(a.repos[a.repoIndex])
}

// currentRepository rebuilds the repository identifier from the
// selected ledger record.
func (a *App) currentRepository() domain.RepositoryID {
	if len(a.repos) == 0 {
		return domain.RepositoryID{}
	}
	r := a.repos[a.repoIndex]
	return domain.RepositoryID{Owner: r.Owner, Name: r.Name, URL: r.URL}
}

func (a *App) moveUp() {
	if a.selected > 0 {
		a.selected--
	}
}

func (a *App) moveDown() {
	if a.selected < len(a.results)-1 {
		a.selected++
	}
}

func (a *App) copySelected() {
	result := a.SelectedResult()
	if result == nil {
		return
	}
	if a.ports.Actions == nil {
		a.status = "Copy not available"
		return
	}
	if err := a.ports.Actions.CopyToClipboard(a.ctx, result); err != nil {
		a.status = "Copy: " + err.Error()
		return
	}
	a.status = "Copied to clipboard"
}

func (a *App) openSelected() {
	result := a.SelectedResult()
	if result == nil {
		return
	}
	if a.ports.Actions == nil {
		a.status = "Open not available"
		return
	}
	if err := a.ports.Actions.OpenSource(a.ctx, result); err != nil {
		a.status = "Open: " + err.Error()
		return
	}
	a.status = "Opening source..."
}

// View renders the application.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)

	sections = append(sections, a.styles.Title.Render("docdex"), "")
	sections = append(sections, a.renderRepoLine(), "")
	sections = append(sections, a.renderInput(), "")

	if a.err != nil {
		sections = append(sections, a.styles.Error.Render("Error: "+a.err.Error()), "")
	}

	sections = append(sections, a.renderResults())

	sections = append(sections, "", a.renderStatusBar())
	sections = append(sections, a.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderRepoLine() string {
	if len(a.repos) == 0 {
		return a.styles.Muted.Render("No repositories indexed")
	}

	label := repoLabel(a.repos[a.repoIndex])
	position := fmt.Sprintf(" (%d/%d)", a.repoIndex+1, len(a.repos))
	return a.styles.Subtitle.Render("Repository: "+label) + a.styles.Muted.Render(position)
}

func (a *App) renderInput() string {
	label := a.styles.Title.Render("Query: ")
	return lipgloss.JoinHorizontal(lipgloss.Center, label, a.input.View())
}

func (a *App) renderResults() string {
	if a.searching {
		return a.styles.Muted.Render("Searching...")
	}
	if len(a.results) == 0 {
		return a.styles.Muted.Render("Type a query and press Enter.")
	}

	lines := make([]string, 0, len(a.results)*2+2)

	header := a.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(a.results)))
	lines = append(lines, header, "")

	// Each result takes two lines, plus breathing room.
	visible := a.listHeight() / 3
	if visible < 1 {
		visible = 1
	}

	start := 0
	if a.selected >= visible {
		start = a.selected - visible + 1
	}
	end := start + visible
	if end > len(a.results) {
		end = len(a.results)
	}

	for i := start; i < end; i++ {
		lines = append(lines, a.renderResult(i, &a.results[i]))
	}

	return strings.Join(lines, "\n")
}

// renderResult formats a single retrieval result: the source location
// with its distance, then a one line content preview.
func (a *App) renderResult(index int, result *domain.RetrievalResult) string {
	indicator := "  "
	if index == a.selected {
		indicator = "> "
	}

	location := resultLocation(result)
	maxLoc := a.width - 14
	if maxLoc < 10 {
		maxLoc = 10
	}
	if len(location) > maxLoc {
		location = location[:maxLoc-3] + "..."
	}

	distance := ""
	if result.HasDistance {
		distance = fmt.Sprintf("%.4f", result.Distance)
	}

	var header string
	if index == a.selected {
		header = a.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxLoc, location, distance))
	} else {
		header = a.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxLoc, location)) +
			a.styles.Muted.Render(distance)
	}

	preview := strings.Join(strings.Fields(result.Content), " ")
	maxPreview := a.width - 6
	if maxPreview < 20 {
		maxPreview = 20
	}
	if len(preview) > maxPreview {
		preview = preview[:maxPreview-3] + "..."
	}

	return header + "\n" + a.styles.Muted.Render("    "+preview)
}

func (a *App) renderStatusBar() string {
	return a.styles.StatusBar.Width(a.width).Render(a.status)
}

func (a *App) renderHelp() string {
	return a.styles.Help.Render("↑/k ↓/j navigate • enter query • tab repository • c copy • o open • q quit")
}

// SetDimensions sets the terminal dimensions and marks the app ready.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	inputWidth := width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	a.input.Width = inputWidth
}

// listHeight returns the rows available to the result list. Header,
// repository line, input, status bar, and help consume the rest.
func (a *App) listHeight() int {
	h := a.height - 10
	if h < 3 {
		h = 3
	}
	return h
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// Query returns the current query input value.
func (a *App) Query() string {
	return a.input.Value()
}

// SetQuery sets the query input value.
func (a *App) SetQuery(query string) {
	a.input.SetValue(query)
}

// Results returns the current retrieval results.
func (a *App) Results() []domain.RetrievalResult {
	return a.results
}

// SelectedIndex returns the index of the selected result.
func (a *App) SelectedIndex() int {
	return a.selected
}

// SelectedResult returns the currently selected result, or nil if none.
func (a *App) SelectedResult() *domain.RetrievalResult {
	if len(a.results) == 0 || a.selected < 0 || a.selected >= len(a.results) {
		return nil
	}
	return &a.results[a.selected]
}

// Repositories returns the loaded repository records.
func (a *App) Repositories() []domain.Repository {
	return a.repos
}

// RepositoryIndex returns the index of the selected repository.
func (a *App) RepositoryIndex() int {
	return a.repoIndex
}

// Err returns the last error, if any.
func (a *App) Err() error {
	return a.err
}

// InputFocused returns whether the query input has focus.
func (a *App) InputFocused() bool {
	return a.focusInput
}

// Status returns the current status line text.
func (a *App) Status() string {
	return a.status
}

// repoLabel formats a repository record for display.
func repoLabel(r domain.Repository) string {
	if r.Owner != "" {
		return r.Owner + "/" + r.Name
	}
	if r.Name != "" {
		return r.Name
	}
	return r.Collection
}

// resultLocation formats a result's source location as path:start-end.
func resultLocation(r *domain.RetrievalResult) string {
	loc := r.Path
	if loc == "" {
		loc = r.Repo
	}
	if r.LineStart > 0 {
		loc = fmt.Sprintf("%s:%d-%d", loc, r.LineStart, r.LineEnd)
	}
	return loc
}
