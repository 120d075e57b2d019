package httpapi

import (
	"net/http"

	"github.com/and161185/taskhub/internal/errs"
	"github.com/and161185/taskhub/internal/model"
	"github.com/and161185/taskhub/internal/validate"
)

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

type noteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// caller returns the authenticated user id, and the path id when withID is set.
func caller(r *http.Request, withID bool) (userID, id int64, err error) {
	ident, ok := IdentityFromCtx(r.Context())
	if !ok {
		return 0, 0, errs.ErrUnauthorized
	}
	if withID {
		if id, err = pathID(r, "id"); err != nil {
			return 0, 0, err
		}
	}
	return ident.UserID, id, nil
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	uid, _, err := caller(r, false)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	out, err := s.categories.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	uid, _, err := caller(r, false)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req categoryRequest
	if err := s.decode(r, validate.CategoryCreate, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	c, err := s.categories.Create(r.Context(), uid, model.CategoryCreate{
		Name:        deref(req.Name),
		Description: deref(req.Description),
		Color:       deref(req.Color),
	})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	uid, id, err := caller(r, true)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	c, err := s.categories.Get(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	uid, id, err := caller(r, true)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req categoryRequest
	if err := s.decode(r, validate.CategoryUpdate, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	c, err := s.categories.Update(r.Context(), uid, id, model.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	uid, id, err := caller(r, true)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.categories.Delete(r.Context(), uid, id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	uid, _, err := caller(r, false)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	out, err := s.notes.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	uid, _, err := caller(r, false)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req noteRequest
	if err := s.decode(r, validate.NoteCreate, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	n, err := s.notes.Create(r.Context(), uid, model.NoteCreate{Title: deref(req.Title), Content: deref(req.Content)})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) getNote(w http.ResponseWriter, r *http.Request) {
	uid, id, err := caller(r, true)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	n, err := s.notes.Get(r.Context(), uid, id)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) updateNote(w http.ResponseWriter, r *http.Request) {
	uid, id, err := caller(r, true)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	var req noteRequest
	if err := s.decode(r, validate.NoteUpdate, &req); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	n, err := s.notes.Update(r.Context(), uid, id, model.NoteUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	uid, id, err := caller(r, true)
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	if err := s.notes.Delete(r.Context(), uid, id); err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
