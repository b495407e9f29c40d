package main

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

func (s *Site) Home(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.cfg.PublicDir, "index.html"))
}

func (s *Site) LoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", map[string]any{
		"Title": "Admin Login",
	})
}

func (s *Site) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	account, err := authenticate(s.db, r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		s.serverError(w, "authenticating", err)
		return
	}

	s.metrics.RecordLogin(account != nil)

	if account == nil {
		slog.Warn("login failed", "username", r.FormValue("username"), "remote_addr", clientIP(r))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Login failed"))
		return
	}

	if err := s.login(w, r, account); err != nil {
		s.serverError(w, "creating session", err)
		return
	}

	slog.Info("login succeeded", "username", account.Username)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Site) Admin(w http.ResponseWriter, r *http.Request) {
	s.render(w, "admin.html", map[string]any{
		"Title":    "Create Post",
		"Sections": Sections,
	})
}

func (s *Site) Publish(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	err := r.ParseMultipartForm(s.cfg.MaxUploadBytes)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		defer r.MultipartForm.RemoveAll()
	case errors.Is(err, http.ErrNotMultipart):
		// url-encoded body, already parsed into r.PostForm; no image
	case errors.As(err, &tooLarge):
		http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
		return
	default:
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	file, header, err := formImage(r.MultipartForm)
	if err != nil {
		s.serverError(w, "reading upload", err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	image, err := s.images.Save(file, header)
	if err != nil {
		s.serverError(w, "storing upload", err)
		return
	}

	title := r.FormValue("title")
	section := r.FormValue("section")
	id, err := createPost(s.db, title, r.FormValue("content"), image, section)
	if err != nil {
		s.serverError(w, "creating post", err)
		return
	}

	s.metrics.RecordPost(section, image != "")

	attrs := []any{"id", id, "section", section, "image", image}
	if account := accountFromContext(r.Context()); account != nil {
		attrs = append(attrs, "username", account.Username)
	}
	slog.Info("post published", attrs...)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Site) Section(w http.ResponseWriter, r *http.Request) {
	name := sectionParam(r)

	posts, err := listPostsBySection(s.db, name)
	if err != nil {
		s.serverError(w, "listing posts", err)
		return
	}

	s.render(w, "section.html", map[string]any{
		"Title":   name,
		"Section": name,
		"Posts":   posts,
	})
}

// sectionParam returns the decoded {name} path segment. chi hands back the
// raw segment when the URL carried escapes that did not round-trip.
func sectionParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func (s *Site) render(w http.ResponseWriter, page string, data map[string]any) {
	err := s.templates[page].ExecuteTemplate(w, "base", data)
	if err != nil {
		slog.Error("rendering template", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Site) serverError(w http.ResponseWriter, action string, err error) {
	slog.Error(action, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
