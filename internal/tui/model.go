// Package tui is the terminal front end for the lists.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/internal/eventbus"
	"pkt.systems/ahalaj/internal/logx"
	"pkt.systems/ahalaj/internal/sessionprefs"
	"pkt.systems/ahalaj/schema"
)

const (
	fieldName = iota
	fieldPick
	fieldFirstItem
)

// Origin tags changes made from the terminal UI.
const Origin = "tui"

// changeMsg carries a collection change published on the event bus.
type changeMsg struct {
	event eventbus.Event
}

// Model is the bubbletea model for the list editor.
type Model struct {
	ctx     context.Context
	service core.Service
	prefs   *sessionprefs.Prefs
	events  <-chan eventbus.Event
	title   string

	tabs    schema.Collection
	current schema.Tab
	notices []schema.Notice

	inputs     []textinput.Model
	focus      int
	confirming bool
	status     string
	shownTitle string
	width      int
	height     int

	copyText func(string) error
}

// New constructs a model and loads the current list. events may be nil.
func New(ctx context.Context, service core.Service, events <-chan eventbus.Event) (*Model, error) {
	prefs := sessionprefs.New()
	ctx = sessionprefs.WithContext(ctx, prefs)
	ctx = logx.ContextWithSurface(ctx, logx.SurfaceTUI)
	ctx = eventbus.WithOrigin(ctx, Origin)
	m := &Model{
		ctx:      ctx,
		service:  service,
		prefs:    prefs,
		events:   events,
		title:    service.Config().Title,
		copyText: clipboard.WriteAll,
	}
	if err := m.reload(false); err != nil {
		return nil, err
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.shownTitle = core.Title(m.current, m.title)
	return tea.Batch(textinput.Blink, tea.SetWindowTitle(m.shownTitle), waitForChange(m.events))
}

func waitForChange(events <-chan eventbus.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return changeMsg{event: event}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for i := range m.inputs {
			m.inputs[i].Width = max(msg.Width-8, 10)
		}
		return m, nil
	case changeMsg:
		if msg.event.Origin != Origin {
			logx.WithTab(m.ctx, msg.event.TabID).Debug("tui change received", "change", string(msg.event.Type), "origin", msg.event.Origin)
			m.fail(m.reload(true))
		}
		return m, tea.Batch(m.titleCmd(), waitForChange(m.events))
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == keyQuit {
		m.fail(m.commit())
		return m, tea.Quit
	}
	if len(m.notices) > 0 {
		if key == keyEnter || key == keyQuitAlt || key == " " {
			m.acknowledge()
		}
		return m, nil
	}
	if m.confirming {
		m.confirming = false
		switch strings.ToLower(key) {
		case "y", keyEnter:
			m.removeList(true)
		default:
			m.status = "removal cancelled"
		}
		return m, m.titleCmd()
	}
	m.status = ""
	switch key {
	case keyQuitAlt:
		m.fail(m.commit())
		return m, tea.Quit
	case keyNextField, keyDown:
		m.moveFocus(1)
	case keyPrevField, keyUp:
		m.moveFocus(-1)
	case keyEnter:
		m.save()
		m.moveFocus(1)
	case keySave:
		m.save()
	case keyRandomise:
		m.randomise()
	case keyAddItem:
		m.addItem()
	case keyRemoveItem:
		m.removeItem()
	case keyAddList:
		m.addList()
	case keyRemoveList:
		m.removeList(false)
	case keyForceRemove:
		m.removeList(true)
	case keyNextList, keyNextListAlt:
		m.switchList(1)
	case keyPrevList, keyPrevListAlt:
		m.switchList(-1)
	case keyShowAll:
		m.prefs.SetShowAll(!m.prefs.ShowAll())
	case keyCopy:
		m.copyPicked()
	default:
		return m.updateFocused(msg)
	}
	return m, m.titleCmd()
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus < 0 || m.focus >= len(m.inputs) {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// titleCmd updates the window title when the current list's name changed.
func (m *Model) titleCmd() tea.Cmd {
	title := core.Title(m.current, m.title)
	if title == m.shownTitle {
		return nil
	}
	m.shownTitle = title
	return tea.SetWindowTitle(title)
}

func (m *Model) fail(err error) {
	if err == nil {
		return
	}
	logx.WithTab(m.ctx, m.current.ID).Warn("tui action failed", "err", err)
	m.status = err.Error()
}

// reload refreshes the lists from the service. With keepFocused the text
// being edited survives the refresh.
func (m *Model) reload(keepFocused bool) error {
	resp, err := m.service.ListTabs(m.ctx, schema.ListTabsRequest{TabID: m.prefs.CurrentTab()})
	if err != nil {
		return err
	}
	var draft *string
	if keepFocused && m.focus >= 0 && m.focus < len(m.inputs) && resp.Current.ID == m.current.ID {
		value := m.inputs[m.focus].Value()
		draft = &value
	}
	m.tabs = resp.Tabs
	m.current = resp.Current
	m.notices = resp.Notices
	m.prefs.SetCurrentTab(resp.Current.ID)
	m.buildInputs()
	if draft != nil && m.focus < len(m.inputs) {
		m.inputs[m.focus].SetValue(*draft)
	}
	return nil
}

func (m *Model) buildInputs() {
	width := max(m.width-8, 20)
	values := []string{string(m.current.Name), strconv.Itoa(m.current.TargetPickCount)}
	for _, item := range m.current.Items {
		values = append(values, item.Text)
	}
	inputs := make([]textinput.Model, len(values))
	for i, value := range values {
		input := textinput.New()
		input.Prompt = ""
		input.Width = width
		input.SetValue(value)
		if i == fieldPick {
			input.CharLimit = 6
			input.Placeholder = "count"
		}
		inputs[i] = input
	}
	m.inputs = inputs
	if m.focus >= len(m.inputs) {
		m.focus = len(m.inputs) - 1
	}
	if m.focus < 0 {
		m.focus = 0
	}
	m.inputs[m.focus].Focus()
}

func (m *Model) moveFocus(step int) {
	if len(m.inputs) == 0 {
		return
	}
	m.fail(m.commit())
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + step + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

// commit writes field edits that differ from the stored list. An invalid
// pick count is dropped and the field reverts.
func (m *Model) commit() error {
	if len(m.inputs) < fieldFirstItem {
		return nil
	}
	req := schema.EditTabRequest{TabID: m.current.ID}
	changed := false
	if name := schema.TabName(m.inputs[fieldName].Value()); name != m.current.Name {
		req.Name = &name
		changed = true
	}
	if pick := m.inputs[fieldPick].Value(); pick != strconv.Itoa(m.current.TargetPickCount) {
		req.PickCount = &pick
		changed = true
	}
	for i, item := range m.current.Items {
		idx := fieldFirstItem + i
		if idx >= len(m.inputs) {
			break
		}
		if text := m.inputs[idx].Value(); text != item.Text {
			req.Items = append(req.Items, schema.Item{ID: item.ID, Text: text})
			changed = true
		}
	}
	if !changed {
		return nil
	}
	resp, err := m.service.EditTab(m.ctx, req)
	if err != nil {
		return err
	}
	m.current = resp.Tab
	if idx := m.tabs.Index(resp.Tab.ID); idx >= 0 {
		m.tabs[idx] = resp.Tab
	}
	if m.inputs[fieldPick].Value() != strconv.Itoa(resp.Tab.TargetPickCount) {
		m.inputs[fieldPick].SetValue(strconv.Itoa(resp.Tab.TargetPickCount))
	}
	return nil
}

func (m *Model) save() {
	m.fail(m.commit())
	m.fail(m.reload(false))
}

func (m *Model) randomise() {
	m.fail(m.commit())
	resp, err := m.service.Randomize(m.ctx, schema.RandomizeRequest{TabID: m.current.ID})
	if err != nil {
		m.fail(err)
		return
	}
	if resp.Outcome == schema.OutcomeItemAdded {
		m.status = fmt.Sprintf("a list needs at least %d items", core.MinRandomizeItems)
		m.focus = fieldFirstItem + len(resp.Tab.Items) - 1
	}
	m.fail(m.reload(false))
}

func (m *Model) addItem() {
	m.fail(m.commit())
	resp, err := m.service.AddItem(m.ctx, schema.AddItemRequest{TabID: m.current.ID})
	if err != nil {
		m.fail(err)
		return
	}
	m.focus = fieldFirstItem + len(resp.Tab.Items) - 1
	m.fail(m.reload(false))
}

func (m *Model) removeItem() {
	idx := m.focus - fieldFirstItem
	if idx < 0 || idx >= len(m.current.Items) {
		m.status = "select an item to remove"
		return
	}
	m.fail(m.commit())
	item := m.current.Items[idx]
	if _, err := m.service.RemoveItem(m.ctx, schema.RemoveItemRequest{TabID: m.current.ID, ItemID: item.ID}); err != nil {
		m.fail(err)
		return
	}
	m.fail(m.reload(false))
}

func (m *Model) addList() {
	m.fail(m.commit())
	if _, err := m.service.CreateTab(m.ctx, schema.CreateTabRequest{}); err != nil {
		m.fail(err)
		return
	}
	m.focus = fieldName
	m.fail(m.reload(false))
}

func (m *Model) removeList(confirmed bool) {
	m.fail(m.commit())
	_, err := m.service.RemoveTab(m.ctx, schema.RemoveTabRequest{TabID: m.current.ID, Confirmed: confirmed})
	switch {
	case errors.Is(err, schema.ErrConfirmationRequired):
		m.confirming = true
		return
	case err != nil:
		m.fail(err)
		return
	}
	m.focus = fieldName
	m.fail(m.reload(false))
}

func (m *Model) switchList(step int) {
	if len(m.tabs) < 2 {
		return
	}
	m.fail(m.commit())
	idx := m.tabs.Index(m.current.ID)
	next := m.tabs[(idx+step+len(m.tabs))%len(m.tabs)]
	m.prefs.SetCurrentTab(next.ID)
	m.fail(m.reload(false))
}

func (m *Model) acknowledge() {
	upTo := m.notices[len(m.notices)-1].ID
	if _, err := m.service.AcknowledgeNotices(m.ctx, schema.AcknowledgeNoticesRequest{UpTo: upTo}); err != nil {
		m.fail(err)
		return
	}
	m.fail(m.reload(false))
}

func (m *Model) copyPicked() {
	picked := core.Picked(m.current)
	if len(picked) == 0 {
		m.status = "nothing to copy"
		return
	}
	lines := make([]string, len(picked))
	for i, item := range picked {
		lines[i] = item.Text
	}
	if err := m.copyText(strings.Join(lines, "\n")); err != nil {
		m.fail(fmt.Errorf("copy to clipboard: %w", err))
		return
	}
	m.status = fmt.Sprintf("copied %d picked items", len(picked))
}
