// Package tui provides the interactive vault search screen.
//
// It is a single bubbletea model: a query input on top, the result list
// below it. Enter submits the query, the arrow keys move the result
// cursor, and esc quits. It follows the Elm architecture used by
// Bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lodestone-hq/vaultsync/internal/core/domain"
)

// searchCompleted carries the outcome of an asynchronous search back
// into the update loop.
type searchCompleted struct {
	results []domain.SearchResult
	err     error
}

// App is the interactive search screen. It implements tea.Model.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the screen styles.
	styles *Styles

	// input is the query input field.
	input textinput.Model

	// results holds the current search results.
	results []domain.SearchResult

	// selected is the index of the highlighted result.
	selected int

	// err holds the last search error.
	err error

	// searching indicates a query is in flight.
	searching bool

	// searched indicates at least one query has completed.
	searched bool

	// focusInput is true while the user is typing a query.
	focusInput bool

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates the first WindowSizeMsg has arrived.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the search screen. A non-empty initialQuery is
// submitted as the first search when the program starts.
func NewApp(ports *Ports, initialQuery string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	ti := textinput.New()
	ti.Placeholder = "Search the vault..."
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(initialQuery)
	ti.Focus()

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     DefaultStyles(),
		input:      ti,
		focusInput: true,
		width:      80,
		height:     24,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		tea.SetWindowTitle("vaultsync - Vault Search"),
	}
	if query := strings.TrimSpace(a.input.Value()); query != "" {
		a.searching = true
		cmds = append(cmds, a.performSearch(query))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		inputWidth := msg.Width - 14
		if inputWidth < 20 {
			inputWidth = 20
		}
		a.input.Width = inputWidth
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case searchCompleted:
		a.searching = false
		a.searched = true
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.results = msg.results
		a.selected = 0
		// Move to results mode so the arrow keys and q work directly.
		a.focusInput = false
		a.input.Blur()
		return a, nil
	}

	if a.focusInput {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKey processes keyboard input.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return a, tea.Quit

	case tea.KeyEnter:
		query := strings.TrimSpace(a.input.Value())
		if query == "" {
			return a, nil
		}
		a.searching = true
		a.err = nil
		return a, a.performSearch(query)

	case tea.KeyUp:
		a.moveUp()
		return a, nil

	case tea.KeyDown:
		a.moveDown()
		return a, nil
	}

	// Typing mode: everything else edits the query.
	if a.focusInput {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	// Results mode.
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "k":
		a.moveUp()
	case "j":
		a.moveDown()
	case "n", "/":
		// New query: clear and refocus the input.
		a.focusInput = true
		a.input.SetValue("")
		return a, a.input.Focus()
	}

	return a, nil
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

// performSearch runs the query off the update loop and reports back via
// a searchCompleted message.
func (a *App) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := a.ports.Search.Search(a.ctx, query, domain.SearchOptions{})
		return searchCompleted{results: results, err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := a.styles.Title.Render("Vaultsync Search")
	sections = append(sections, header, "")

	label := a.styles.Title.Render("Query: ")
	inputView := a.styles.InputField.Render(a.input.View())
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Center, label, inputView), "")

	switch {
	case a.err != nil:
		sections = append(sections, a.styles.Error.Render("Error: "+a.err.Error()), "")
	case a.searching:
		sections = append(sections, a.styles.Muted.Render("Searching..."), "")
	case a.searched && len(a.results) == 0:
		sections = append(sections, a.styles.Muted.Render("No results."), "")
	case len(a.results) > 0:
		count := fmt.Sprintf("%d results", len(a.results))
		sections = append(sections, a.styles.Muted.Render(count), "")
	}

	if len(a.results) > 0 {
		sections = append(sections, a.renderResults())
	}

	sections = append(sections, "", a.styles.Help.Render(a.helpLine()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderResults renders a window of the result list around the cursor.
func (a *App) renderResults() string {
	const linesPerResult = 4

	chrome := 8 // header, input, status and help lines
	visible := (a.height - chrome) / linesPerResult
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

	lines := make([]string, 0, (end-start)*linesPerResult)
	for i := start; i < end; i++ {
		result := a.results[i]

		title := result.Title
		if title == "" {
			title = result.Path
		}

		var head string
		if i == a.selected {
			head = a.styles.Selected.Render(fmt.Sprintf("> [%d] %s", i+1, title))
		} else {
			head = a.styles.Normal.Render(fmt.Sprintf("  [%d] %s", i+1, title))
		}
		head = lipgloss.JoinHorizontal(lipgloss.Center, head, a.styles.Score.Render(fmt.Sprintf("  %.2f", result.Score)))
		lines = append(lines, head)

		location := result.Path
		if result.Heading != "" {
			location += " › " + result.Heading
		}
		lines = append(lines, a.styles.Muted.Render("      "+location))

		if result.Snippet != "" {
			lines = append(lines, a.styles.Normal.Render("      "+result.Snippet))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// helpLine returns the key hints for the current mode.
func (a *App) helpLine() string {
	if a.focusInput {
		return "enter search · ↑/↓ move · esc quit"
	}
	return "↑/↓ move · enter search again · n new query · q/esc quit"
}

// Query returns the current query text.
func (a *App) Query() string {
	return a.input.Value()
}

// SetQuery sets the query text.
func (a *App) SetQuery(query string) {
	a.input.SetValue(query)
}

// Results returns the current search results.
func (a *App) Results() []domain.SearchResult {
	return a.results
}

// SelectedIndex returns the index of the highlighted result.
func (a *App) SelectedIndex() int {
	return a.selected
}

// Err returns the last search error, if any.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the first window size has arrived.
func (a *App) Ready() bool {
	return a.ready
}

// InputFocused returns whether the query input has focus.
func (a *App) InputFocused() bool {
	return a.focusInput
}
