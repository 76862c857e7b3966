// ABOUTME: Read-only web view of the relationship data plus a Prometheus endpoint
// ABOUTME: Serves the dashboard, contacts, and reminders pages and /metrics on localhost
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harperreed/rapport/cache"
	"github.com/harperreed/rapport/models"
	"github.com/harperreed/rapport/views"
)

type Server struct {
	store     *cache.Store
	templates *template.Template
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	now       func() time.Time
}

// NewServer builds the web view. gatherer may be nil to omit /metrics.
func NewServer(store *cache.Store, gatherer prometheus.Gatherer, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"day": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("Jan 2")
		},
	}).Parse(pageTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     store,
		templates: tmpl,
		gatherer:  gatherer,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Handler returns the routes without starting a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /contacts", s.handleContacts)
	mux.HandleFunc("GET /reminders", s.handleReminders)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if err := s.store.LoadAll(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	stats := views.GenerateDashboardStats(views.DashboardInput{
		Contacts:     s.store.Contacts.Items(),
		Interactions: s.store.Interactions.Items(),
		Reminders:    s.store.Reminders.Items(),
		Gifts:        s.store.Gifts.Items(),
		Now:          s.now(),
	})

	s.renderTemplate(w, "dashboard", map[string]any{
		"Title":     "Dashboard",
		"Dashboard": views.RenderDashboard(stats),
	})
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Contacts.Load(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	query := r.URL.Query().Get("q")
	contacts := views.Contacts(s.store.Contacts.Items(), views.ContactCriteria{Query: query})

	type contactView struct {
		models.Contact
		BirthdaySoon bool
	}
	now := s.now()
	rows := make([]contactView, len(contacts))
	for i, c := range contacts {
		rows[i] = contactView{Contact: c, BirthdaySoon: views.BirthdaySoon(c, now)}
	}

	s.renderTemplate(w, "contacts", map[string]any{
		"Title":    "Contacts",
		"Query":    query,
		"Contacts": rows,
	})
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.store.Reminders.Load(ctx); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	now := s.now()
	criteria := views.ReminderCriteria{
		Status:      models.ReminderPending,
		OverdueOnly: r.URL.Query().Get("overdue") != "",
		Now:         now,
	}

	type reminderView struct {
		Title   string
		When    string
		Overdue bool
	}
	var rows []reminderView
	for _, rem := range views.Reminders(s.store.Reminders.Items(), criteria) {
		rows = append(rows, reminderView{
			Title:   rem.Title,
			When:    views.RelativeDateLabel(rem.Date, now),
			Overdue: views.IsOverdue(rem, now),
		})
	}

	s.renderTemplate(w, "reminders", map[string]any{
		"Title":     "Reminders",
		"Reminders": rows,
	})
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

const pageTemplates = `
{{define "header"}}<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}} · rapport</title></head>
<body><nav><a href="/">Dashboard</a> · <a href="/contacts">Contacts</a> · <a href="/reminders">Reminders</a></nav>
<h1>{{.Title}}</h1>{{end}}
{{define "footer"}}</body></html>{{end}}

{{define "dashboard"}}{{template "header" .}}<pre>{{.Dashboard}}</pre>{{template "footer"}}{{end}}

{{define "contacts"}}{{template "header" .}}
<form><input name="q" value="{{.Query}}" placeholder="Search"></form>
<table>
<tr><th>Name</th><th>Email</th><th>Phone</th><th>Relationship</th><th>Birthday</th></tr>
{{range .Contacts}}<tr><td>{{.Name}}</td><td>{{.Email}}</td><td>{{.Phone}}</td><td>{{.RelationshipType}}</td><td>{{day .Birthday}}{{if .BirthdaySoon}} 🎂{{end}}</td></tr>
{{else}}<tr><td colspan="5">No contacts found</td></tr>
{{end}}</table>
{{template "footer"}}{{end}}

{{define "reminders"}}{{template "header" .}}
<ul>
{{range .Reminders}}<li>{{.When}}: {{.Title}}{{if .Overdue}} <strong>overdue</strong>{{end}}</li>
{{else}}<li>Nothing pending</li>
{{end}}</ul>
{{template "footer"}}{{end}}
`
