package services_test

import (
	"time"

	"elpunto/internal/models"
	"elpunto/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) List() ([]models.User, error) {
	args := m.Called()
	return args.Get(0).([]models.User), args.Error(1)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Latest(limit int) ([]models.Product, error) {
	args := m.Called(limit)
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockForumRepository is a mock implementation of repositories.ForumRepository
type MockForumRepository struct {
	mock.Mock
}

func (m *MockForumRepository) Create(message *models.ForumMessage) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockForumRepository) Recent() ([]models.ForumMessage, error) {
	args := m.Called()
	return args.Get(0).([]models.ForumMessage), args.Error(1)
}

// MockGalleryRepository is a mock implementation of repositories.GalleryRepository
type MockGalleryRepository struct {
	mock.Mock
}

func (m *MockGalleryRepository) Create(image *models.GalleryImage) error {
	args := m.Called(image)
	return args.Error(0)
}

func (m *MockGalleryRepository) Recent(limit int) ([]models.GalleryImage, error) {
	args := m.Called(limit)
	return args.Get(0).([]models.GalleryImage), args.Error(1)
}

// MockEventRepository is a mock implementation of repositories.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(event *models.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockEventRepository) All() ([]models.Event, error) {
	args := m.Called()
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventRepository) Upcoming(from time.Time, limit int) ([]models.Event, error) {
	args := m.Called(from, limit)
	return args.Get(0).([]models.Event), args.Error(1)
}

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(routingKey string, payload interface{}) error {
	args := m.Called(routingKey, payload)
	return args.Error(0)
}

// fakeTransactor hands the mocks straight to fn. committed reports whether
// fn returned without error.
type fakeTransactor struct {
	events    *MockEventRepository
	products  *MockProductRepository
	calls     int
	committed bool
}

func (f *fakeTransactor) InTx(fn func(w repositories.CatalogWriter) error) error {
	f.calls++
	err := fn(repositories.CatalogWriter{Events: f.events, Products: f.products})
	f.committed = err == nil
	return err
}
