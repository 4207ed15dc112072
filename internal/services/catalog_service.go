package services

import (
	"time"

	"elpunto/internal/models"
	"elpunto/internal/repositories"
)

const (
	homeEvents   = 3
	homeImages   = 6
	homeProducts = 4
)

// Member is the public view of a user shown on the members page.
type Member struct {
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Bio       string    `json:"bio"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// HomeView is the data behind the home page.
type HomeView struct {
	Events   []models.Event        `json:"eventos"`
	Images   []models.GalleryImage `json:"imagenes"`
	Products []models.Product      `json:"productos"`
}

// CatalogService serves the public read-only pages.
type CatalogService struct {
	users    repositories.UserRepository
	events   repositories.EventRepository
	images   repositories.GalleryRepository
	products *ProductService
	now      func() time.Time
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(users repositories.UserRepository, events repositories.EventRepository, images repositories.GalleryRepository, products *ProductService) *CatalogService {
	return &CatalogService{users: users, events: events, images: images, products: products, now: time.Now}
}

// Home returns the next events, the latest images and the newest products.
func (s *CatalogService) Home() (HomeView, error) {
	events, err := s.events.Upcoming(s.now().UTC(), homeEvents)
	if err != nil {
		return HomeView{}, persistenceError("home events", err)
	}
	images, err := s.images.Recent(homeImages)
	if err != nil {
		return HomeView{}, persistenceError("home images", err)
	}
	products, err := s.products.LatestProducts(homeProducts)
	if err != nil {
		return HomeView{}, err
	}
	return HomeView{Events: events, Images: images, Products: products}, nil
}

// Events returns every event by date.
func (s *CatalogService) Events() ([]models.Event, error) {
	events, err := s.events.All()
	if err != nil {
		return nil, persistenceError("list events", err)
	}
	return events, nil
}

// Members lists registered users without their private fields.
func (s *CatalogService) Members() ([]Member, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, persistenceError("list members", err)
	}
	members := make([]Member, 0, len(users))
	for _, u := range users {
		members = append(members, Member{
			Username:  u.Username,
			Avatar:    u.Avatar,
			Bio:       u.Bio,
			IsAdmin:   u.IsAdmin,
			CreatedAt: u.CreatedAt,
		})
	}
	return members, nil
}
