package services

import (
	"elpunto/internal/auth"
	"elpunto/internal/models"
	"elpunto/internal/repositories"

	"github.com/rs/zerolog/log"
)

// ForumForm is the input of Post. Only the content is taken from the
// request; the author always comes from the session.
type ForumForm struct {
	Content string `json:"contenido" form:"contenido" validate:"required,max=2000"`
}

// ForumService appends and lists forum messages.
type ForumService struct {
	repo     repositories.ForumRepository
	notifier Notifier
}

// NewForumService creates a new ForumService.
func NewForumService(repo repositories.ForumRepository, notifier Notifier) *ForumService {
	return &ForumService{repo: repo, notifier: notifier}
}

// Messages returns every message, newest first.
func (s *ForumService) Messages() ([]models.ForumMessage, error) {
	messages, err := s.repo.Recent()
	if err != nil {
		return nil, persistenceError("list forum messages", err)
	}
	return messages, nil
}

// Post stores form.Content verbatim under the principal's username.
func (s *ForumService) Post(p auth.Principal, form ForumForm) (Submission[*models.ForumMessage], error) {
	var out Submission[*models.ForumMessage]
	if err := authorize(p, auth.RequiresAuthenticated); err != nil {
		return out, err
	}
	if verr := validateStruct(form); verr != nil {
		return out, verr
	}

	message := &models.ForumMessage{Author: p.Username, Content: form.Content}
	if err := s.repo.Create(message); err != nil {
		return out, persistenceError("create forum message", err)
	}

	log.Info().Str("message_id", message.ID).Str("author", message.Author).Msg("forum message posted")
	notify(s.notifier, "forum.message.created", map[string]interface{}{
		"id":     message.ID,
		"author": message.Author,
	})
	out.Record = message
	out.Message = "Mensaje publicado."
	return out, nil
}
