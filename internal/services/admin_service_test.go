package services_test

import (
	"errors"
	"testing"
	"time"

	"elpunto/internal/auth"
	"elpunto/internal/models"
	"elpunto/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var admin = auth.Principal{UserID: "a1", Username: "admin", IsAdmin: true}

func newAdminFixture() (*services.AdminService, *fakeTransactor) {
	tx := &fakeTransactor{
		events:   new(MockEventRepository),
		products: new(MockProductRepository),
	}
	return services.NewAdminService(tx, nil), tx
}

func TestAdminService_CreateProduct(t *testing.T) {
	service, tx := newAdminFixture()
	tx.products.On("Create", mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Mouse" && p.Price == 49.99 && p.Stock == 10
	})).Return(nil).Once()

	res, err := service.Create(admin, services.AdminForm{Name: "Mouse", Price: "49.99", Stock: "10"})
	require.NoError(t, err)
	require.NotNil(t, res.Record.Product)
	assert.Nil(t, res.Record.Event)
	assert.Equal(t, "Producto creado.", res.Message)
	assert.True(t, tx.committed)
	tx.products.AssertExpectations(t)
	tx.events.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAdminService_CreateEventAndProduct(t *testing.T) {
	service, tx := newAdminFixture()
	want := time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC)
	tx.events.On("Create", mock.MatchedBy(func(e *models.Event) bool {
		return e.Title == "Torneo Smash" && e.Date.Equal(want)
	})).Return(nil).Once()
	tx.products.On("Create", mock.Anything).Return(nil).Once()

	res, err := service.Create(admin, services.AdminForm{
		Title: "Torneo Smash",
		Date:  "2026-11-20T18:30",
		Name:  "Mando",
		Price: "19,50",
		Stock: "3",
	})
	require.NoError(t, err)
	assert.Equal(t, 19.5, res.Record.Product.Price)
	assert.Equal(t, "Evento creado. Producto creado.", res.Message)
	assert.Equal(t, 1, tx.calls)
	tx.events.AssertExpectations(t)
	tx.products.AssertExpectations(t)
}

func TestAdminService_NonAdminIsDenied(t *testing.T) {
	service, tx := newAdminFixture()
	form := services.AdminForm{Name: "Mouse", Price: "1", Stock: "1"}

	_, err := service.Create(member, form)
	var denied *services.DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, auth.AdminRequired, denied.Decision.Reason)

	_, err = service.Create(auth.Anonymous, form)
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, auth.LoginRequired, denied.Decision.Reason)
	assert.Zero(t, tx.calls)
}

func TestAdminService_ValidatesEveryGroupBeforeWriting(t *testing.T) {
	service, tx := newAdminFixture()

	// Valid event, broken product: nothing may be written.
	_, err := service.Create(admin, services.AdminForm{
		Title: "Torneo",
		Date:  "2026-11-20 18:30",
		Name:  "Mouse",
		Price: "abc",
		Stock: "-1",
	})
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "precio")
	assert.Contains(t, verr.Fields, "stock")
	assert.NotContains(t, verr.Fields, "titulo")
	assert.Zero(t, tx.calls)
}

func TestAdminService_CoercionErrors(t *testing.T) {
	cases := []struct {
		name  string
		form  services.AdminForm
		field string
	}{
		{"negative price", services.AdminForm{Name: "M", Price: "-0.01", Stock: "1"}, "precio"},
		{"not a number", services.AdminForm{Name: "M", Price: "NaN", Stock: "1"}, "precio"},
		{"missing price", services.AdminForm{Name: "M", Stock: "1"}, "precio"},
		{"fractional stock", services.AdminForm{Name: "M", Price: "1", Stock: "1.5"}, "stock"},
		{"missing name", services.AdminForm{Price: "1", Stock: "1"}, "nombre"},
		{"bad date", services.AdminForm{Title: "T", Date: "20/11/2026"}, "fecha"},
		{"missing date", services.AdminForm{Title: "T"}, "fecha"},
		{"missing title", services.AdminForm{Date: "2026-11-20 18:30"}, "titulo"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service, tx := newAdminFixture()
			_, err := service.Create(admin, tc.form)
			var verr *services.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tc.field)
			assert.Zero(t, tx.calls)
		})
	}
}

func TestAdminService_EmptyForm(t *testing.T) {
	service, tx := newAdminFixture()

	_, err := service.Create(admin, services.AdminForm{})
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "form")
	assert.Zero(t, tx.calls)
}

func TestAdminService_WriteFailureRollsBack(t *testing.T) {
	service, tx := newAdminFixture()
	tx.events.On("Create", mock.Anything).Return(nil).Once()
	tx.products.On("Create", mock.Anything).Return(errors.New("constraint failed")).Once()

	_, err := service.Create(admin, services.AdminForm{
		Title: "Torneo", Date: "2026-11-20 18:30",
		Name: "Mouse", Price: "1", Stock: "1",
	})
	assert.True(t, errors.Is(err, services.ErrPersistence))
	assert.False(t, tx.committed)
}
