package gate

import (
	"log/slog"
	"net/http"

	"github.com/ecopickup/ecopickup/internal/i18n"
	"github.com/ecopickup/ecopickup/internal/view"
)

// Placeholders renders the localized loading and denial pages.
type Placeholders struct {
	templates *view.Engine
	localizer *i18n.Localizer
	logger    *slog.Logger
}

// NewPlaceholders constructs Placeholders.
func NewPlaceholders(templates *view.Engine, localizer *i18n.Localizer, logger *slog.Logger) *Placeholders {
	return &Placeholders{templates: templates, localizer: localizer, logger: logger}
}

// Loading renders the neutral loading page with 503 and Retry-After.
func (p *Placeholders) Loading() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		p.render(w, r, http.StatusServiceUnavailable, view.Notice{
			Heading: i18n.MsgLoading,
			Message: i18n.MsgLoadingHint,
			Spinner: true,
		})
	})
}

// Denied renders the generic access denied page with 403.
func (p *Placeholders) Denied() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.render(w, r, http.StatusForbidden, view.Notice{
			Heading: i18n.MsgDenied,
			Message: i18n.MsgDeniedHint,
			Hint:    i18n.MsgSignInPrompt,
		})
	})
}

func (p *Placeholders) render(w http.ResponseWriter, r *http.Request, status int, notice view.Notice) {
	printer := p.localizer.Printer(r)
	notice.Heading = printer.Sprintf(notice.Heading)
	notice.Message = printer.Sprintf(notice.Message)
	if notice.Hint != "" {
		notice.Hint = printer.Sprintf(notice.Hint)
	}
	data := view.TemplateData{
		Title:       notice.Heading,
		Lang:        p.localizer.Tag(r).String(),
		CurrentPath: r.URL.Path,
		Data:        notice,
	}
	if err := p.templates.Render(w, status, "pages/notice.html", data); err != nil && p.logger != nil {
		p.logger.Error("render notice", slog.Any("error", err))
	}
}
