package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"elpunto/internal/auth"
	"elpunto/internal/models"
	"elpunto/internal/repositories"

	"github.com/rs/zerolog/log"
)

// Accepted layouts for an event date, as typed or as sent by a
// datetime-local input.
var eventDateLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04"}

// AdminForm is the admin panel form. It may describe an event, a product or
// both; a group counts as present when any of its fields is filled in.
type AdminForm struct {
	Title              string `json:"titulo" form:"titulo"`
	EventDescription   string `json:"descripcion" form:"descripcion"`
	Date               string `json:"fecha" form:"fecha"`
	Name               string `json:"nombre" form:"nombre"`
	ProductDescription string `json:"producto_descripcion" form:"producto_descripcion"`
	Price              string `json:"precio" form:"precio"`
	Stock              string `json:"stock" form:"stock"`
}

func (f AdminForm) hasEvent() bool {
	return strings.TrimSpace(f.Title+f.EventDescription+f.Date) != ""
}

func (f AdminForm) hasProduct() bool {
	return strings.TrimSpace(f.Name+f.ProductDescription+f.Price+f.Stock) != ""
}

// AdminResult holds whatever an admin submission created.
type AdminResult struct {
	Event   *models.Event
	Product *models.Product
}

// AdminService creates events and products on behalf of admins.
type AdminService struct {
	tx       repositories.Transactor
	notifier Notifier
}

// NewAdminService creates a new AdminService.
func NewAdminService(tx repositories.Transactor, notifier Notifier) *AdminService {
	return &AdminService{tx: tx, notifier: notifier}
}

// Create validates every group in form before writing anything, then
// stores the event and/or product in one transaction.
func (s *AdminService) Create(p auth.Principal, form AdminForm) (Submission[AdminResult], error) {
	var out Submission[AdminResult]
	if err := authorize(p, auth.RequiresAdmin); err != nil {
		return out, err
	}

	if !form.hasEvent() && !form.hasProduct() {
		return out, fieldError("form", "Completa los datos de un evento o de un producto.")
	}

	verr := &ValidationError{}
	var result AdminResult
	if form.hasEvent() {
		event, eerr := parseEvent(form)
		verr.Merge(eerr)
		result.Event = event
	}
	if form.hasProduct() {
		product, perr := parseProduct(form)
		verr.Merge(perr)
		result.Product = product
	}
	if err := verr.OrNil(); err != nil {
		return out, err
	}

	err := s.tx.InTx(func(w repositories.CatalogWriter) error {
		if result.Event != nil {
			if err := w.Events.Create(result.Event); err != nil {
				return err
			}
		}
		if result.Product != nil {
			if err := w.Products.Create(result.Product); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return out, persistenceError("admin create", err)
	}

	var created []string
	if result.Event != nil {
		created = append(created, "Evento creado.")
		log.Info().Str("event_id", result.Event.ID).Str("admin", p.Username).Msg("event created")
		notify(s.notifier, "event.created", map[string]interface{}{"id": result.Event.ID, "titulo": result.Event.Title})
	}
	if result.Product != nil {
		created = append(created, "Producto creado.")
		log.Info().Str("product_id", result.Product.ID).Str("admin", p.Username).Msg("product created")
		notify(s.notifier, "product.created", map[string]interface{}{"id": result.Product.ID, "nombre": result.Product.Name})
	}

	out.Record = result
	out.Message = strings.Join(created, " ")
	return out, nil
}

func parseEvent(form AdminForm) (*models.Event, *ValidationError) {
	verr := &ValidationError{}
	title := strings.TrimSpace(form.Title)
	verr.Merge(validateVar("titulo", title, "required,max=140"))

	var date time.Time
	raw := strings.TrimSpace(form.Date)
	if raw == "" {
		verr.Add("fecha", "Este campo es obligatorio.")
	} else {
		parsed, ok := parseEventDate(raw)
		if !ok {
			verr.Add("fecha", "Usa el formato AAAA-MM-DD HH:MM.")
		}
		date = parsed
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return &models.Event{Title: title, Description: form.EventDescription, Date: date}, nil
}

func parseEventDate(raw string) (time.Time, bool) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseProduct(form AdminForm) (*models.Product, *ValidationError) {
	verr := &ValidationError{}
	name := strings.TrimSpace(form.Name)
	verr.Merge(validateVar("nombre", name, "required,max=140"))

	var price float64
	if raw := strings.TrimSpace(form.Price); raw == "" {
		verr.Add("precio", "Este campo es obligatorio.")
	} else if v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		verr.Add("precio", "Introduce un precio válido.")
	} else if v < 0 {
		verr.Add("precio", "El precio no puede ser negativo.")
	} else {
		price = v
	}

	var stock int
	if raw := strings.TrimSpace(form.Stock); raw == "" {
		verr.Add("stock", "Este campo es obligatorio.")
	} else if v, err := strconv.Atoi(raw); err != nil {
		verr.Add("stock", "Introduce un número entero.")
	} else if v < 0 {
		verr.Add("stock", "El stock no puede ser negativo.")
	} else {
		stock = v
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return &models.Product{Name: name, Description: form.ProductDescription, Price: price, Stock: stock}, nil
}
