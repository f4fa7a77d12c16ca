package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pkt.systems/ahalaj/core"
	"pkt.systems/ahalaj/internal/eventbus"
	"pkt.systems/ahalaj/internal/logx"
	"pkt.systems/ahalaj/internal/navigation"
	"pkt.systems/ahalaj/schema"
)

const (
	actionSave       = "save"
	actionRandomise  = "randomise"
	actionAddItem    = "add-item"
	actionRemoveItem = "remove-item:"
	actionAddList    = "add-list"
	actionRemoveList = "remove-list"
)

// Server serves the list form UI.
type Server struct {
	cfg      Config
	service  core.Service
	bus      *eventbus.Bus
	pages    *template.Template
	basePath string
	baseHref string
}

// NewServer constructs an HTTP server. bus may be nil, in which case the
// change stream is unavailable.
func NewServer(cfg Config, service core.Service, bus *eventbus.Bus) *Server {
	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = service.Config().Title
	}
	return &Server{
		cfg:      cfg,
		service:  service,
		bus:      bus,
		pages:    parseTemplates(),
		basePath: navigation.CleanBasePath(cfg.BasePath),
		baseHref: navigation.BaseHref(cfg.BaseURL, cfg.BasePath),
	}
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /form/{id}", s.handleForm)
	mux.HandleFunc("POST /form/{id}", s.handleSubmit)
	mux.HandleFunc("POST /notices/ack", s.handleAckNotices)
	mux.HandleFunc("GET /api/tabs", s.handleTabs)
	mux.HandleFunc("GET /api/stream", s.handleStream)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", assetHandler()))

	handler := withRequestLogging(mux)
	if s.basePath == "" {
		return handler
	}
	prefix := s.basePath
	root := http.NewServeMux()
	root.Handle(prefix+"/", http.StripPrefix(prefix, handler))
	root.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != prefix {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, prefix+"/", http.StatusTemporaryRedirect)
	})
	return root
}

// formPath returns the location of a list including the show-all toggle.
func (s *Server) formPath(id schema.TabID, showAll bool) string {
	path := navigation.Path(s.basePath, id)
	if showAll {
		path += "?all=1"
	}
	return path
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.ListTabs(r.Context(), schema.ListTabsRequest{})
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	http.Redirect(w, r, s.formPath(resp.Current.ID, false), http.StatusFound)
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requested := schema.NormalizeTabID(r.PathValue("id"))
	showAll := r.URL.Query().Get("all") == "1"
	resp, err := s.service.ListTabs(ctx, schema.ListTabsRequest{TabID: requested})
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	if resp.Replace {
		logx.Ctx(ctx).Debug("http form fallback", "requested", requested, "current", resp.Current.ID)
		http.Redirect(w, r, s.formPath(resp.Current.ID, showAll), http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, s.buildPage(resp, showAll))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	requested := schema.NormalizeTabID(r.PathValue("id"))
	showAll := r.PostForm.Get("all") == "1"
	resp, err := s.service.ListTabs(ctx, schema.ListTabsRequest{TabID: requested})
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	if resp.Replace {
		logx.Ctx(ctx).Info("http submit dropped", "requested", requested, "reason", "unknown list")
		http.Redirect(w, r, s.formPath(resp.Current.ID, showAll), http.StatusSeeOther)
		return
	}
	if len(resp.Notices) > 0 {
		s.render(w, r, http.StatusConflict, s.buildPage(resp, showAll))
		return
	}
	tab := resp.Current
	log := logx.WithTab(ctx, tab.ID)
	if edit, ok := editFromForm(tab, r.PostForm); ok {
		if _, err := s.service.EditTab(ctx, edit); err != nil {
			s.renderFailure(w, r, err)
			return
		}
	}

	action := r.PostForm.Get("action")
	location := s.formPath(tab.ID, showAll)
	log.Debug("http submit", "action", action)
	switch {
	case action == "" || action == actionSave:
	case action == actionRandomise:
		if _, err := s.service.Randomize(ctx, schema.RandomizeRequest{TabID: tab.ID}); err != nil {
			s.renderFailure(w, r, err)
			return
		}
	case action == actionAddItem:
		added, err := s.service.AddItem(ctx, schema.AddItemRequest{TabID: tab.ID})
		if err != nil {
			s.renderFailure(w, r, err)
			return
		}
		location += "#" + itemField(added.Item.ID)
	case strings.HasPrefix(action, actionRemoveItem):
		id, err := schema.ParseItemID(strings.TrimPrefix(action, actionRemoveItem))
		if err == nil {
			_, err = s.service.RemoveItem(ctx, schema.RemoveItemRequest{TabID: tab.ID, ItemID: id})
		}
		if err != nil {
			s.renderWithError(w, r, tab.ID, showAll, err)
			return
		}
	case action == actionAddList:
		created, err := s.service.CreateTab(ctx, schema.CreateTabRequest{})
		if err != nil {
			s.renderFailure(w, r, err)
			return
		}
		location = s.formPath(created.Tab.ID, showAll)
	case action == actionRemoveList:
		confirmed := r.PostForm.Get("confirm") == "yes" || r.PostForm.Get("force") == "1"
		removed, err := s.service.RemoveTab(ctx, schema.RemoveTabRequest{TabID: tab.ID, Confirmed: confirmed})
		switch {
		case errors.Is(err, schema.ErrConfirmationRequired):
			s.renderConfirm(w, r, tab.ID, showAll)
			return
		case err != nil:
			s.renderWithError(w, r, tab.ID, showAll, err)
			return
		}
		location = s.formPath(removed.Current.ID, showAll)
	default:
		http.Error(w, fmt.Sprintf("unknown action %q", action), http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// editFromForm collects the submitted field values that differ from tab.
func editFromForm(tab schema.Tab, form url.Values) (schema.EditTabRequest, bool) {
	req := schema.EditTabRequest{TabID: tab.ID}
	changed := false
	if values, ok := form["name"]; ok && len(values) > 0 && schema.TabName(values[0]) != tab.Name {
		name := schema.TabName(values[0])
		req.Name = &name
		changed = true
	}
	if values, ok := form["pickCount"]; ok && len(values) > 0 && values[0] != strconv.Itoa(tab.TargetPickCount) {
		value := values[0]
		req.PickCount = &value
		changed = true
	}
	for _, item := range tab.Items {
		values, ok := form[itemField(item.ID)]
		if !ok || len(values) == 0 || values[0] == item.Text {
			continue
		}
		req.Items = append(req.Items, schema.Item{ID: item.ID, Text: values[0]})
		changed = true
	}
	return req, changed
}

func itemField(id schema.ItemID) string {
	return "item-" + id.String()
}

func (s *Server) handleAckNotices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	upTo, _ := strconv.ParseInt(r.PostForm.Get("upTo"), 10, 64)
	resp, err := s.service.AcknowledgeNotices(ctx, schema.AcknowledgeNoticesRequest{UpTo: upTo})
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	logx.Ctx(ctx).Info("http notices acknowledged", "cleared", resp.Cleared)
	target := schema.NormalizeTabID(r.PostForm.Get("return"))
	if target == "" {
		http.Redirect(w, r, s.basePath+"/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, s.formPath(target, r.PostForm.Get("all") == "1"), http.StatusSeeOther)
}

func (s *Server) handleTabs(w http.ResponseWriter, r *http.Request) {
	resp, err := s.service.ListTabs(r.Context(), schema.ListTabsRequest{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Tabs)
}

// StreamEvent is sent to SSE clients when the collection changes.
type StreamEvent struct {
	Seq       uint64       `json:"seq"`
	Type      string       `json:"type"`
	TabID     schema.TabID `json:"tab_id,omitempty"`
	Origin    string       `json:"origin,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || s.bus == nil {
		writeError(w, http.StatusNotImplemented, errors.New("stream unsupported"))
		return
	}
	log := logx.Ctx(r.Context())
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, unsubscribe := s.bus.Subscribe()
	defer unsubscribe()
	log.Info("http stream opened")
	var seq uint64
	for {
		select {
		case <-r.Context().Done():
			log.Info("http stream closed")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			seq++
			_ = writeSSEvent(w, StreamEvent{
				Seq:       seq,
				Type:      string(event.Type),
				TabID:     event.TabID,
				Origin:    event.Origin,
				Timestamp: time.Now(),
			})
			flusher.Flush()
		}
	}
}

// renderWithError re-renders a list with a message, for rejected edits such
// as removing the last item or list.
func (s *Server) renderWithError(w http.ResponseWriter, r *http.Request, id schema.TabID, showAll bool, cause error) {
	resp, err := s.service.ListTabs(r.Context(), schema.ListTabsRequest{TabID: id})
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	logx.WithTab(r.Context(), id).Info("http submit rejected", "err", cause)
	data := s.buildPage(resp, showAll)
	data.Error = cause.Error()
	s.render(w, r, statusFor(cause), data)
}

func (s *Server) renderConfirm(w http.ResponseWriter, r *http.Request, id schema.TabID, showAll bool) {
	resp, err := s.service.ListTabs(r.Context(), schema.ListTabsRequest{TabID: id})
	if err != nil {
		s.renderFailure(w, r, err)
		return
	}
	data := s.buildPage(resp, showAll)
	data.Confirm = true
	s.render(w, r, http.StatusOK, data)
}

func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	logx.Ctx(r.Context()).Warn("http request failed", "err", err)
	http.Error(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, schema.ErrTabNotFound), errors.Is(err, schema.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, schema.ErrLastTab), errors.Is(err, schema.ErrLastItem):
		return http.StatusConflict
	case errors.Is(err, schema.ErrInvalidPickCount), errors.Is(err, schema.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data page) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "page", data); err != nil {
		logx.Ctx(r.Context()).Error("http render failed", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeSSEvent(w http.ResponseWriter, event StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if event.Seq > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", event.Seq)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", strings.TrimSpace(string(data)))
	return nil
}
