package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/internal/format"
	"pkt.systems/ahalaj/internal/logx"
	"pkt.systems/ahalaj/internal/navigation"
	"pkt.systems/ahalaj/internal/sessionprefs"
	"pkt.systems/ahalaj/internal/version"
	"pkt.systems/ahalaj/schema"
)

// HandlerConfig configures shell command behavior.
type HandlerConfig struct {
	// BaseURL is the externally reachable HTTP root used by "url".
	BaseURL             string
	BasePath            string
	DisableAuditLogging bool
}

// Handler routes shell commands to service operations. The session's
// current list is kept in the sessionprefs stored on the context.
type Handler struct {
	service  core.Service
	cfg      HandlerConfig
	renderer *format.PlainRenderer
}

// NewHandler constructs a command handler.
func NewHandler(service core.Service, cfg HandlerConfig) *Handler {
	return &Handler{
		service:  service,
		cfg:      cfg,
		renderer: format.NewPlainRenderer(),
	}
}

var helpLines = []string{
	"lists                  show every list",
	"use <n|id>             select a list",
	"new                    add a list",
	"close [-f]             remove the current list",
	"show [all]             show the items of the current list",
	"add [text]             append an item",
	"set <n> <text>         change the text of item n",
	"rm <n>                 remove item n",
	"name <text>            rename the current list",
	"pick <n>               set how many items are picked",
	"go                     randomise the current list",
	"results [all]          show results",
	"notices                show and clear storage notices",
	"url                    print the web location of the current list",
	"version                print the version",
}

// Handle parses input and executes it, writing output lines to w. Blank
// input is a no-op. ErrConfirmationRequired is returned unwrapped so a
// caller can prompt and retry with "close -f".
func (h *Handler) Handle(ctx context.Context, w io.Writer, input string) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	cmd, ok := Parse(input)
	if !ok {
		return nil
	}
	log := logx.Ctx(ctx).With("command", cmd.Name, "args", len(cmd.Args))
	if !h.cfg.DisableAuditLogging {
		log.Debug("audit command", "command", cmd.Raw)
	}
	log.Info("command request")
	pending := h.service.Notices(ctx)
	if len(pending) > 0 && !allowedWithNotices(cmd.Name) {
		writeLines(w, h.renderer.Notices(pending))
		writeLines(w, []string{noticeHint})
		log.Warn("command rejected", "reason", "notices pending", "notices", len(pending))
		return schema.ErrNoticesPending
	}
	var err error
	switch cmd.Name {
	case "help", "?":
		writeLines(w, helpLines)
	case "lists", "ls":
		err = h.handleLists(ctx, w)
	case "use":
		err = h.handleUse(ctx, w, cmd)
	case "new":
		err = h.handleNew(ctx, w)
	case "close":
		err = h.handleClose(ctx, w, cmd)
	case "show", "items":
		err = h.handleShow(ctx, w, cmd)
	case "add":
		err = h.handleAdd(ctx, w, cmd)
	case "set":
		err = h.handleSet(ctx, w, cmd)
	case "rm":
		err = h.handleRemoveItem(ctx, w, cmd)
	case "name":
		err = h.handleName(ctx, w, cmd)
	case "pick":
		err = h.handlePick(ctx, w, cmd)
	case "go", "shuffle", "randomise", "randomize":
		err = h.handleRandomize(ctx, w)
	case "results":
		err = h.handleResults(ctx, w, cmd)
	case "notices":
		err = h.handleNotices(ctx, w)
	case "url":
		err = h.handleURL(ctx, w)
	case "version":
		writeLines(w, []string{version.Current()})
	default:
		log.Warn("command rejected", "reason", "unknown")
		return fmt.Errorf("unknown command: %s", cmd.Name)
	}
	if err != nil && !errors.Is(err, schema.ErrConfirmationRequired) {
		log.Warn("command failed", "err", err)
	}
	if len(pending) == 0 {
		if raised := h.service.Notices(ctx); len(raised) > 0 {
			writeLines(w, h.renderer.Notices(raised))
			writeLines(w, []string{noticeHint})
		}
	}
	return err
}

const noticeHint = `type "notices" to acknowledge`

// allowedWithNotices reports whether a command may run while storage notices
// are pending. Everything else waits for "notices".
func allowedWithNotices(name string) bool {
	switch name {
	case "help", "?", "notices", "version":
		return true
	}
	return false
}

func (h *Handler) current(ctx context.Context) (schema.ListTabsResponse, error) {
	return h.service.ListTabs(ctx, schema.ListTabsRequest{TabID: sessionprefs.FromContext(ctx).CurrentTab()})
}

func (h *Handler) handleLists(ctx context.Context, w io.Writer) error {
	resp, err := h.current(ctx)
	if err != nil {
		return err
	}
	writeLines(w, h.renderer.Tabs(resp.Tabs, resp.Current.ID))
	return nil
}

func (h *Handler) handleUse(ctx context.Context, w io.Writer, cmd Command) error {
	if len(cmd.Args) != 1 {
		return errors.New("usage: use <n|id>")
	}
	resp, err := h.current(ctx)
	if err != nil {
		return err
	}
	tab, ok := selectTab(resp.Tabs, cmd.Args[0])
	if !ok {
		return schema.ErrTabNotFound
	}
	sessionprefs.FromContext(ctx).SetCurrentTab(tab.ID)
	logx.WithTab(ctx, tab.ID).Debug("command list selected")
	writeLines(w, []string{fmt.Sprintf("using %s", tab.DisplayName())})
	return nil
}

func selectTab(c schema.Collection, arg string) (schema.Tab, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(c) {
			return schema.Tab{}, false
		}
		return c[n-1], true
	}
	return c.Tab(schema.NormalizeTabID(arg))
}

func (h *Handler) handleNew(ctx context.Context, w io.Writer) error {
	resp, err := h.service.CreateTab(ctx, schema.CreateTabRequest{})
	if err != nil {
		return err
	}
	sessionprefs.FromContext(ctx).SetCurrentTab(resp.Tab.ID)
	writeLines(w, []string{fmt.Sprintf("created %s", resp.Tab.DisplayName())})
	return nil
}

func (h *Handler) handleClose(ctx context.Context, w io.Writer, cmd Command) error {
	resp, err := h.service.RemoveTab(ctx, schema.RemoveTabRequest{
		TabID:     sessionprefs.FromContext(ctx).CurrentTab(),
		Confirmed: cmd.Flag("-f", "--force", "!"),
	})
	if err != nil {
		return err
	}
	writeLines(w, []string{
		fmt.Sprintf("removed %s", resp.Removed.DisplayName()),
		fmt.Sprintf("using %s", resp.Current.DisplayName()),
	})
	return nil
}

func (h *Handler) handleShow(ctx context.Context, w io.Writer, cmd Command) error {
	resp, err := h.current(ctx)
	if err != nil {
		return err
	}
	writeLines(w, h.renderer.Items(resp.Current))
	if len(cmd.Args) > 0 && cmd.Args[0] == "all" {
		sessionprefs.FromContext(ctx).SetShowAll(true)
		writeLines(w, h.renderer.Results(core.BuildResultView(resp.Tabs, resp.Current, true)))
	}
	return nil
}

func (h *Handler) handleAdd(ctx context.Context, w io.Writer, cmd Command) error {
	tabID := sessionprefs.FromContext(ctx).CurrentTab()
	resp, err := h.service.AddItem(ctx, schema.AddItemRequest{TabID: tabID})
	if err != nil {
		return err
	}
	tab, item := resp.Tab, resp.Item
	if cmd.Remainder != "" {
		item.Text = cmd.Remainder
		updated, err := h.service.UpdateItem(ctx, schema.UpdateItemRequest{TabID: tab.ID, Item: item})
		if err != nil {
			return err
		}
		tab = updated.Tab
	}
	writeLines(w, []string{fmt.Sprintf("added %d. %s", len(tab.Items), item.Text)})
	return nil
}

func (h *Handler) handleSet(ctx context.Context, w io.Writer, cmd Command) error {
	if len(cmd.Args) < 1 {
		return errors.New("usage: set <n> <text>")
	}
	resp, err := h.current(ctx)
	if err != nil {
		return err
	}
	item, err := itemAt(resp.Current, cmd.Args[0])
	if err != nil {
		return err
	}
	item.Text = remainderAfterTokens(cmd.Raw, 2)
	if _, err := h.service.UpdateItem(ctx, schema.UpdateItemRequest{TabID: resp.Current.ID, Item: item}); err != nil {
		return err
	}
	logx.WithItem(logx.WithTab(ctx, resp.Current.ID), item.ID).Debug("command item updated")
	writeLines(w, []string{fmt.Sprintf("set %s. %s", cmd.Args[0], item.Text)})
	return nil
}

func (h *Handler) handleRemoveItem(ctx context.Context, w io.Writer, cmd Command) error {
	if len(cmd.Args) != 1 {
		return errors.New("usage: rm <n>")
	}
	resp, err := h.current(ctx)
	if err != nil {
		return err
	}
	item, err := itemAt(resp.Current, cmd.Args[0])
	if err != nil {
		return err
	}
	if _, err := h.service.RemoveItem(ctx, schema.RemoveItemRequest{TabID: resp.Current.ID, ItemID: item.ID}); err != nil {
		return err
	}
	writeLines(w, []string{fmt.Sprintf("removed %s", item.Text)})
	return nil
}

func itemAt(tab schema.Tab, arg string) (schema.Item, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(tab.Items) {
		return schema.Item{}, schema.ErrItemNotFound
	}
	return tab.Items[n-1], nil
}

func (h *Handler) handleName(ctx context.Context, w io.Writer, cmd Command) error {
	resp, err := h.service.RenameTab(ctx, schema.RenameTabRequest{
		TabID: sessionprefs.FromContext(ctx).CurrentTab(),
		Name:  schema.TabName(cmd.Remainder),
	})
	if err != nil {
		return err
	}
	writeLines(w, []string{fmt.Sprintf("renamed to %s", resp.Tab.DisplayName())})
	return nil
}

func (h *Handler) handlePick(ctx context.Context, w io.Writer, cmd Command) error {
	if len(cmd.Args) != 1 {
		return errors.New("usage: pick <n>")
	}
	resp, err := h.service.SetPickCount(ctx, schema.SetPickCountRequest{
		TabID: sessionprefs.FromContext(ctx).CurrentTab(),
		Value: cmd.Args[0],
	})
	if err != nil {
		return err
	}
	writeLines(w, []string{fmt.Sprintf("picking %d", resp.Tab.TargetPickCount)})
	return nil
}

func (h *Handler) handleRandomize(ctx context.Context, w io.Writer) error {
	resp, err := h.service.Randomize(ctx, schema.RandomizeRequest{TabID: sessionprefs.FromContext(ctx).CurrentTab()})
	if err != nil {
		return err
	}
	if resp.Outcome == schema.OutcomeItemAdded {
		writeLines(w, []string{fmt.Sprintf("a list needs at least %d items; added item %d", core.MinRandomizeItems, len(resp.Tab.Items))})
		return nil
	}
	view := core.BuildResultView(schema.Collection{resp.Tab}, resp.Tab, false)
	writeLines(w, h.renderer.Results(view))
	return nil
}

func (h *Handler) handleResults(ctx context.Context, w io.Writer, cmd Command) error {
	resp, err := h.current(ctx)
	if err != nil {
		return err
	}
	prefs := sessionprefs.FromContext(ctx)
	showAll := prefs.ShowAll()
	if len(cmd.Args) > 0 {
		showAll = cmd.Args[0] == "all"
		prefs.SetShowAll(showAll)
	}
	writeLines(w, h.renderer.Results(core.BuildResultView(resp.Tabs, resp.Current, showAll)))
	return nil
}

func (h *Handler) handleNotices(ctx context.Context, w io.Writer) error {
	notices := h.service.Notices(ctx)
	if len(notices) == 0 {
		writeLines(w, []string{"no notices"})
		return nil
	}
	writeLines(w, h.renderer.Notices(notices))
	_, err := h.service.AcknowledgeNotices(ctx, schema.AcknowledgeNoticesRequest{UpTo: notices[len(notices)-1].ID})
	return err
}

func (h *Handler) handleURL(ctx context.Context, w io.Writer) error {
	resp, err := h.current(ctx)
	if err != nil {
		return err
	}
	writeLines(w, []string{h.URL(resp.Current.ID)})
	return nil
}

// URL returns the web location of a list.
func (h *Handler) URL(id schema.TabID) string {
	return strings.TrimRight(h.cfg.BaseURL, "/") + navigation.Path(h.cfg.BasePath, id)
}

func writeLines(w io.Writer, lines []string) {
	if w == nil {
		return
	}
	for _, line := range lines {
		_, _ = io.WriteString(w, line+"\n")
	}
}
