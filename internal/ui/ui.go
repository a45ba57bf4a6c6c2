package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AnouckGaloppin/BookMark/internal/models"
	"github.com/AnouckGaloppin/BookMark/internal/tracker"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ShelfView ViewState = iota
	DetailView
)

const detailBarWidth = 40

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	tracker   *tracker.Tracker
	loadBooks func(context.Context) ([]models.Book, error)
	updates   <-chan struct{}

	width    int
	height   int
	shelf    list.Model
	books    []models.Book
	selected *models.Book
	editErr  error
	err      error
	help     help.Model
	keys     keyMap
}

type booksLoadedMsg struct {
	books []models.Book
	err   error
}

// externalChangeMsg signals a progress or shelf change made outside this view,
// by a sibling tab or a remote push.
type externalChangeMsg struct{}

// NewModel creates a new TUI model with the provided dependencies.
//
// loadBooks fetches the shelf; updates delivers a tick whenever progress or
// book rows change elsewhere, and may be nil for a static view.
func NewModel(ctx context.Context, tr *tracker.Tracker, loadBooks func(context.Context) ([]models.Book, error), updates <-chan struct{}) *Model {
	return &Model{
		ctx:       ctx,
		view:      ShelfView,
		tracker:   tr,
		loadBooks: loadBooks,
		updates:   updates,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by fetching the shelf.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchBooks(), m.waitForUpdate())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.shelf.Width() == 0 {
			m.shelf.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ShelfView:
			return m.handleShelfKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case booksLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.books = msg.books
		m.shelf = list.New(m.items(), list.NewDefaultDelegate(), 0, 0)
		m.shelf.Title = "Reading Shelf"
		m.shelf.SetSize(m.width-4, m.height-8)
		return m, nil

	case externalChangeMsg:
		m.refreshItems()
		return m, m.waitForUpdate()
	}

	return m.updateShelf(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ShelfView:
		return m.renderShelf()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleShelfKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchBooks()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.shelf.SelectedItem().(bookItem); ok {
			book := item.book
			m.selected = &book
			m.editErr = nil
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.shelf, cmd = m.shelf.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.selected = nil
		m.view = ShelfView
		m.refreshItems()
		return m, nil
	case key.Matches(msg, m.keys.more):
		m.adjust(1)
		return m, nil
	case key.Matches(msg, m.keys.less):
		m.adjust(-1)
		return m, nil
	}

	return m, nil
}

// adjust applies a relative pages change through the tracker. A rejected edit
// leaves the displayed value alone and surfaces the validation message.
func (m *Model) adjust(delta int) {
	if m.selected == nil {
		return
	}

	pages := m.tracker.Pages(m.selected.ID) + delta
	if err := m.tracker.UpdateProgress(m.ctx, *m.selected, pages); err != nil {
		m.editErr = err
		return
	}
	m.editErr = nil
}

func (m *Model) updateShelf(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == ShelfView {
		m.shelf, cmd = m.shelf.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchBooks() tea.Cmd {
	return func() tea.Msg {
		books, err := m.loadBooks(m.ctx)
		return booksLoadedMsg{books: books, err: err}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}

	return func() tea.Msg {
		if _, ok := <-m.updates; !ok {
			return nil
		}
		return externalChangeMsg{}
	}
}

func (m *Model) items() []list.Item {
	items := make([]list.Item, len(m.books))
	for i, book := range m.books {
		items[i] = bookItem{book: book, pages: m.tracker.Pages(book.ID)}
	}
	return items
}

// refreshItems re-reads progress for every shelf row in place.
func (m *Model) refreshItems() {
	if len(m.books) == 0 {
		return
	}
	m.shelf.SetItems(m.items())
}

func (m *Model) renderShelf() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.shelf.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	pages := m.tracker.Pages(m.selected.ID)
	title := styles.title.Render(m.selected.Title)
	bar := progressBar(pages, m.selected.TotalPages, detailBarWidth)

	body := fmt.Sprintf("%s\n%s\n", title, bar)
	if m.selected.Author != "" {
		body = fmt.Sprintf("%s\n%s\n\n%s\n", title, styles.help.Render(m.selected.Author), bar)
	}

	if m.editErr != nil {
		body += "\n" + styles.warn.Render(m.editErr.Error()) + "\n"
	}
	if m.selected.TotalPages > 0 && pages >= m.selected.TotalPages {
		body += "\n" + styles.ok.Render("Finished!") + "\n"
	}

	helpKeys := []key.Binding{m.keys.more, m.keys.less, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s", body, helpView)
}
