package handlers

import (
	"errors"
	"mime/multipart"

	"elpunto/internal/auth"
	"elpunto/internal/middleware"
	"elpunto/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Flash categories.
const (
	flashSuccess = "success"
	flashInfo    = "info"
	flashError   = "danger"
)

const (
	msgLoginRequired   = "Debes iniciar sesión para acceder a esta página."
	msgPostLogin       = "Debes iniciar sesión para publicar."
	msgAdminRequired   = "No tienes permisos de administrador."
	msgCheckFields     = "Revisa los campos marcados."
	msgUserExists      = "El usuario ya existe."
	msgBadCredentials  = "Credenciales incorrectas."
	msgUnsupportedFile = "Tipo de archivo no permitido."
	msgSaveFailed      = "No se pudo guardar. Inténtalo de nuevo más tarde."
	msgNotFound        = "La página que buscas no existe."
)

// render writes a page as a JSON view document: the page name, the flashes
// to show, the current viewer, the CSRF token for its forms and the page's
// own data.
func render(c *fiber.Ctx, status int, page string, data fiber.Map, now ...middleware.Flash) error {
	flashes := append(middleware.IncomingFlashes(c), now...)
	if flashes == nil {
		flashes = []middleware.Flash{}
	}
	doc := fiber.Map{
		"page":    page,
		"flashes": flashes,
		"viewer":  viewer(middleware.CurrentPrincipal(c)),
	}
	if token := middleware.CSRFToken(c); token != "" {
		doc[middleware.CSRFField] = token
	}
	for k, v := range data {
		doc[k] = v
	}
	return c.Status(status).JSON(doc)
}

func viewer(p auth.Principal) fiber.Map {
	if !p.Authenticated() {
		return nil
	}
	return fiber.Map{"username": p.Username, "is_admin": p.IsAdmin}
}

// deny redirects a request the gate refused: anonymous visitors to the
// login page, signed-in users without the required role to the home page.
func deny(c *fiber.Ctx, d auth.Decision, loginMessage string) error {
	if d.Reason == auth.LoginRequired {
		middleware.AddFlash(c, flashInfo, loginMessage)
		return c.Redirect("/login", fiber.StatusFound)
	}
	middleware.AddFlash(c, flashError, msgAdminRequired)
	return c.Redirect("/", fiber.StatusFound)
}

// notFound renders the 404 page.
func notFound(c *fiber.Ctx) error {
	return render(c, fiber.StatusNotFound, "not_found", nil, middleware.Flash{Category: flashError, Message: msgNotFound})
}

// submissionError re-renders page with the problem explained. fileField
// names the input an unsupported file came from.
func submissionError(c *fiber.Ctx, page, fileField string, err error, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}

	var denied *services.DeniedError
	var verr *services.ValidationError
	switch {
	case errors.As(err, &denied):
		return deny(c, denied.Decision, msgLoginRequired)
	case errors.As(err, &verr):
		data["errors"] = verr.Fields
		return render(c, fiber.StatusOK, page, data, middleware.Flash{Category: flashError, Message: msgCheckFields})
	case errors.Is(err, services.ErrDuplicateIdentity):
		return render(c, fiber.StatusOK, page, data, middleware.Flash{Category: flashError, Message: msgUserExists})
	case errors.Is(err, services.ErrInvalidCredentials):
		return render(c, fiber.StatusOK, page, data, middleware.Flash{Category: flashError, Message: msgBadCredentials})
	case errors.Is(err, services.ErrUnsupportedFileType):
		data["errors"] = map[string]string{fileField: msgUnsupportedFile}
		return render(c, fiber.StatusOK, page, data, middleware.Flash{Category: flashError, Message: msgUnsupportedFile})
	case errors.Is(err, services.ErrNotFound):
		return notFound(c)
	default:
		log.Error().Err(err).Str("page", page).Str("path", c.Path()).Msg("submission failed")
		return render(c, fiber.StatusOK, page, data, middleware.Flash{Category: flashError, Message: msgSaveFailed})
	}
}

// loadError answers a failed read of page data.
func loadError(c *fiber.Ctx, page string, err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c)
	}
	log.Error().Err(err).Str("page", page).Msg("failed to load page data")
	return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la página.")
}

// formUpload returns the file sent in field, or nil when the request has
// none. The caller closes the returned file.
func formUpload(c *fiber.Ctx, field string) (*services.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil || fh.Filename == "" {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{Filename: fh.Filename, Content: f}, f, nil
}

// checked reports whether a checkbox value means "on".
func checked(v string) bool {
	switch v {
	case "on", "1", "true", "yes", "si", "sí":
		return true
	}
	return false
}

// ErrorHandler renders errors that escape a handler, including unmatched
// routes, as view documents.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Error interno del servidor."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code == fiber.StatusNotFound {
		return notFound(c)
	}
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}
	return render(c, code, "error", fiber.Map{"message": message})
}
