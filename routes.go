package main

import (
	"io/fs"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
)

// Routes builds the site's handler. Everything not matched by a route is
// served from the public directory.
func (s *Site) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverPanics)
	r.Use(logRequests(slog.Default(), s.metrics))
	r.Use(securityHeaders)

	r.Get("/", s.Home)
	r.Get("/login", s.LoginForm)
	r.With(s.limiter.Middleware).Post("/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/admin", s.Admin)
		r.Post("/post", s.Publish)
		r.Get("/section/{name}", s.Section)
	})

	r.Handle("/*", http.FileServer(publicFileSystem{http.Dir(s.cfg.PublicDir)}))

	return r
}

// publicFileSystem serves files only. Directories open only when they hold
// an index.html, so http.FileServer never writes a listing.
type publicFileSystem struct {
	fs http.FileSystem
}

func (p publicFileSystem) Open(name string) (http.File, error) {
	f, err := p.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.IsDir() {
		return f, nil
	}

	index, err := p.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		f.Close()
		return nil, fs.ErrNotExist
	}
	index.Close()
	return f, nil
}
