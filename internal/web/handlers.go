// Package web is the thin HTTP surface over the journal: it parses
// request parameters, calls the domain service, and renders pages. All
// behavior of interest lives below it.
package web

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kalambet/daybook/internal/journal"
	"github.com/kalambet/daybook/internal/markdown"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	// Snippets arrive pre-escaped from the journal; embed them as-is.
	"raw": func(s string) template.HTML { return template.HTML(s) },
}).ParseFS(templatesFS, "templates/*.html"))

const maxEntryBodySize = 1 << 20 // 1MB of markdown is plenty for one entry

// Deps holds what the handlers need from the host process.
type Deps struct {
	Journal     *journal.Service
	RecentCount int    // entries shown on the index page
	StaticDir   string // optional; "" disables /static
}

// NewHandler builds the page router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", handleIndex(deps))
	r.Get("/new", handleNewForm(deps))
	r.Post("/new", handleCreate(deps))
	r.Post("/draft", handleSaveDraft(deps))
	r.Get("/entry/{id}", handleEntry(deps))
	r.Get("/year/{year}", handleYear(deps))
	r.Get("/search", handleSearch(deps))

	if deps.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}

type indexView struct {
	Recent     []journal.Entry
	YearCounts []journal.YearSummary
}

func handleIndex(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recent, err := deps.Journal.Recent(deps.RecentCount)
		if err != nil {
			renderError(w, err)
			return
		}
		counts, err := deps.Journal.YearCounts()
		if err != nil {
			renderError(w, err)
			return
		}
		renderPage(w, "index.html", indexView{Recent: recent, YearCounts: counts})
	}
}

type newEntryView struct {
	Draft string
}

func handleNewForm(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, _, err := deps.Journal.Draft()
		if err != nil {
			renderError(w, err)
			return
		}
		renderPage(w, "new.html", newEntryView{Draft: draft})
	}
}

func handleCreate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxEntryBodySize)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		id, err := deps.Journal.Create(r.PostFormValue("body"))
		if err != nil {
			renderError(w, err)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/entry/%d", id), http.StatusSeeOther)
	}
}

func handleSaveDraft(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxEntryBodySize)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if err := deps.Journal.SaveDraft(r.PostFormValue("body")); err != nil {
			renderError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type entryView struct {
	ID        int64
	Date      time.Time
	CreatedAt time.Time
	Body      template.HTML // sanitized by the markdown pipeline
	TextHash  string
}

func handleEntry(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		entry, err := deps.Journal.Entry(id)
		if err != nil {
			renderError(w, err)
			return
		}

		sum := sha256.Sum256([]byte(entry.Body))
		renderPage(w, "entry.html", entryView{
			ID:        entry.ID,
			Date:      entry.Date,
			CreatedAt: entry.CreatedAt,
			Body:      template.HTML(markdown.Render(entry.Body)),
			TextHash:  hex.EncodeToString(sum[:]),
		})
	}
}

type monthGroup struct {
	Month   time.Month
	Entries []journal.Entry
}

type yearView struct {
	Year   int
	Months []monthGroup
	Total  int
}

func handleYear(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(chi.URLParam(r, "year"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		view, err := deps.Journal.Year(year)
		if err != nil {
			renderError(w, err)
			return
		}

		months := make([]monthGroup, 0, len(view.Months))
		for m, entries := range view.Months {
			months = append(months, monthGroup{Month: m, Entries: entries})
		}
		sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

		renderPage(w, "year.html", yearView{Year: view.Year, Months: months, Total: view.Total})
	}
}

type searchView struct {
	Query   string
	Results []journal.SearchResult
}

func handleSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		results, err := deps.Journal.Search(query)
		if err != nil {
			renderError(w, err)
			return
		}
		renderPage(w, "search.html", searchView{Query: query, Results: results})
	}
}

func renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		// Headers are already gone; nothing left to do but log.
		slog.Error("rendering page", "template", name, "error", err)
	}
}

// renderError maps journal error kinds onto HTTP statuses. Storage and
// corrupt-data failures are server faults and get logged before the
// response is written.
func renderError(w http.ResponseWriter, err error) {
	switch {
	case journal.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case journal.IsNotFound(err):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
