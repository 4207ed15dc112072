package services

import (
	"errors"
	"strings"

	"elpunto/internal/auth"
	"elpunto/internal/models"
	"elpunto/internal/repositories"
	"elpunto/internal/uploads"

	"github.com/rs/zerolog/log"
)

// ProfileUpdate lists the fields present in an edit request. Nil fields keep
// their stored value.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Bio      *string
	Avatar   *Upload
}

// ProfileService shows and edits the signed-in user's own profile.
type ProfileService struct {
	users    repositories.UserRepository
	files    FileStore
	notifier Notifier
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users repositories.UserRepository, files FileStore, notifier Notifier) *ProfileService {
	return &ProfileService{users: users, files: files, notifier: notifier}
}

// Get returns the principal's own user record.
func (s *ProfileService) Get(p auth.Principal) (*models.User, error) {
	if err := authorize(p, auth.RequiresAuthenticated); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(p.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, persistenceError("load profile", err)
	}
	return user, nil
}

// Edit applies a partial update to the principal's profile. Username and
// email uniqueness is not pre-checked here; a collision is rejected by the
// store's unique indexes and reported as ErrPersistence.
func (s *ProfileService) Edit(p auth.Principal, upd ProfileUpdate) (Submission[*models.User], error) {
	var out Submission[*models.User]
	if err := authorize(p, auth.RequiresAuthenticated); err != nil {
		return out, err
	}

	verr := &ValidationError{}
	if upd.Username != nil {
		trimmed := strings.TrimSpace(*upd.Username)
		upd.Username = &trimmed
		verr.Merge(validateVar("username", trimmed, "required,min=3,max=80"))
	}
	if upd.Email != nil {
		trimmed := strings.TrimSpace(*upd.Email)
		upd.Email = &trimmed
		verr.Merge(validateVar("email", trimmed, "required,email,max=120"))
	}
	if upd.Bio != nil {
		verr.Merge(validateVar("bio", *upd.Bio, "max=500"))
	}
	if err := verr.OrNil(); err != nil {
		return out, err
	}

	user, err := s.Get(p)
	if err != nil {
		return out, err
	}

	var avatar string
	if upd.Avatar != nil && upd.Avatar.Filename != "" {
		avatar, err = s.files.Accept(upd.Avatar.Content, upd.Avatar.Filename, uploads.OwnerNaming(user.ID))
		if err != nil {
			if errors.Is(err, ErrUnsupportedFileType) {
				return out, err
			}
			return out, persistenceError("store avatar", err)
		}
	}

	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	previousAvatar := user.Avatar
	if avatar != "" {
		user.Avatar = avatar
	}

	if err := s.users.Update(user); err != nil {
		if avatar != "" {
			if rmErr := s.files.Remove(avatar); rmErr != nil {
				log.Error().Err(rmErr).Str("file", avatar).Msg("failed to remove orphaned avatar")
			}
		}
		return out, persistenceError("update profile", err)
	}

	if avatar != "" && previousAvatar != "" && previousAvatar != models.DefaultAvatar && previousAvatar != avatar {
		if err := s.files.Remove(previousAvatar); err != nil {
			log.Error().Err(err).Str("file", previousAvatar).Msg("failed to remove replaced avatar")
		}
	}

	log.Info().Str("user_id", user.ID).Msg("profile updated")
	notify(s.notifier, "profile.updated", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})
	out.Record = user
	out.Message = "Perfil actualizado."
	return out, nil
}
