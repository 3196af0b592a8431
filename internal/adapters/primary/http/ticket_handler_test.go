package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lusodesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
	"github.com/lusodesk/helpdesk-backend/internal/core/mocks"
	"github.com/lusodesk/helpdesk-backend/internal/core/ports"
)

func newTicketRouter(service *mocks.MockTicketService, userID uuid.UUID, role domain.Role) http.Handler {
	logger := testLogger()
	handler := NewTicketHandler(service, nil, NewErrorHandler(logger), logger)

	r := chi.NewRouter()
	r.Route("/tickets", func(r chi.Router) {
		r.Use(withClaims(userID, role))
		handler.RegisterRoutes(r)
	})
	return r
}

func sampleTicket(id int64, creatorID uuid.UUID) *domain.Ticket {
	return &domain.Ticket{
		ID:          id,
		Title:       "Impressora avariada",
		Description: "A impressora do segundo andar não liga.",
		Status:      domain.StatusOpen,
		Priority:    domain.PriorityMedium,
		CreatorID:   creatorID,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestTicketHandler_Create(t *testing.T) {
	userID := uuid.New()
	service := mocks.NewMockTicketService()
	service.On("CreateTicket", mock.Anything, mock.MatchedBy(func(params ports.CreateTicketParams) bool {
		return params.Title == "Impressora avariada" &&
			params.Priority == domain.PriorityHigh &&
			params.Actor.ID == userID
	})).Return(sampleTicket(1, userID), nil)

	body := `{"title":"Impressora avariada","description":"Não liga.","priority":"HIGH"}`
	router := newTicketRouter(service, userID, domain.RoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tickets", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var dto TicketDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, int64(1), dto.ID)
	assert.Equal(t, "OPEN", dto.Status)
	assert.Equal(t, userID.String(), dto.CreatorID)

	service.AssertExpectations(t)
}

func TestTicketHandler_CreateRejectsMissingTitle(t *testing.T) {
	userID := uuid.New()
	service := mocks.NewMockTicketService()

	body := `{"description":"sem título"}`
	router := newTicketRouter(service, userID, domain.RoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tickets", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	service.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
}

func TestTicketHandler_CreateRejectsUnknownPriority(t *testing.T) {
	userID := uuid.New()
	service := mocks.NewMockTicketService()

	body := `{"title":"Pedido","priority":"ASAP"}`
	router := newTicketRouter(service, userID, domain.RoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tickets", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	service.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything)
}

func TestTicketHandler_GetForbidden(t *testing.T) {
	userID := uuid.New()
	service := mocks.NewMockTicketService()
	service.On("GetTicket", mock.Anything, int64(9), mock.Anything).Return(nil, apperrors.ErrForbidden)

	router := newTicketRouter(service, userID, domain.RoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets/9", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTicketHandler_UpdateStatus(t *testing.T) {
	agentID := uuid.New()
	creatorID := uuid.New()
	updated := sampleTicket(5, creatorID)
	updated.Status = domain.StatusInProgress

	service := mocks.NewMockTicketService()
	service.On("UpdateTicket", mock.Anything, mock.MatchedBy(func(params ports.UpdateTicketParams) bool {
		return params.TicketID == 5 &&
			params.Status != nil && *params.Status == domain.StatusInProgress &&
			params.Priority == nil
	})).Return(updated, nil)

	body := `{"status":"IN_PROGRESS"}`
	router := newTicketRouter(service, agentID, domain.RoleAgent)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/tickets/5", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var dto TicketDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "IN_PROGRESS", dto.Status)

	service.AssertExpectations(t)
}

func TestTicketHandler_UpdateRejectsInvalidTransitionError(t *testing.T) {
	agentID := uuid.New()
	service := mocks.NewMockTicketService()
	service.On("UpdateTicket", mock.Anything, mock.Anything).Return(nil, apperrors.ErrInvalidStatusTransition)

	body := `{"status":"OPEN"}`
	router := newTicketRouter(service, agentID, domain.RoleAgent)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/tickets/5", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketHandler_ListPassesFilters(t *testing.T) {
	userID := uuid.New()
	status := "OPEN"
	service := mocks.NewMockTicketService()
	service.On("ListTickets", mock.Anything, mock.MatchedBy(func(params ports.ListTicketsParams) bool {
		return params.Status != nil && *params.Status == status &&
			params.AssignedToMe &&
			params.Limit == 20 &&
			params.Actor.ID == userID
	})).Return([]*domain.Ticket{sampleTicket(1, userID)}, nil)

	router := newTicketRouter(service, userID, domain.RoleAgent)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets?status=OPEN&assignedToMe=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body ListResponse[TicketDTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)

	service.AssertExpectations(t)
}

func TestTicketHandler_RejectsNonNumericID(t *testing.T) {
	userID := uuid.New()
	service := mocks.NewMockTicketService()

	router := newTicketRouter(service, userID, domain.RoleUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickets/not-a-number", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "GetTicket", mock.Anything, mock.Anything, mock.Anything)
}
