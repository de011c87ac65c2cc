package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"subtrack/middleware"
	"subtrack/models"
	"subtrack/repository"
	"subtrack/services"
)

// SubscriptionStore is what the HTTP surface needs from persistence.
// Every call takes the owner identity explicitly; nothing is read from
// ambient state.
type SubscriptionStore interface {
	Create(sub *models.Subscription) error
	ListByOwner(ownerEmail string) ([]models.Subscription, error)
	DeleteByOwner(id uuid.UUID, ownerEmail string) (bool, error)
	SummaryByOwner(ownerEmail string) (repository.SpendingSummary, error)
}

type SubscriptionHandler struct {
	store SubscriptionStore
}

func NewSubscriptionHandler(store SubscriptionStore) *SubscriptionHandler {
	return &SubscriptionHandler{store: store}
}

type createSubscriptionInput struct {
	ServiceName  string  `json:"service_name"`
	Cost         float64 `json:"cost"`
	BillingCycle string  `json:"billing_cycle"`
	StartDate    string  `json:"start_date"`
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	owner := middleware.CurrentUserEmail(c)
	if owner == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in"})
		return
	}

	subs, err := h.store.ListByOwner(owner)
	if err != nil {
		log.Printf("Error listing subscriptions for %s: %v", owner, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if subs == nil {
		subs = []models.Subscription{}
	}

	c.JSON(http.StatusOK, subs)
}

func (h *SubscriptionHandler) Create(c *gin.Context) {
	owner := middleware.CurrentUserEmail(c)
	if owner == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in"})
		return
	}

	var input createSubscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if input.ServiceName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_name is required"})
		return
	}
	if input.Cost < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cost must be non-negative"})
		return
	}

	cycle := models.BillingCycle(input.BillingCycle)
	if !cycle.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "billing_cycle must be MONTHLY or YEARLY"})
		return
	}

	startDate, err := models.ParseDate(input.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}

	sub := &models.Subscription{
		ID:              uuid.New(),
		ServiceName:     input.ServiceName,
		Cost:            input.Cost,
		BillingCycle:    cycle,
		StartDate:       startDate,
		NextRenewalDate: services.NextRenewalDate(startDate, cycle),
		OwnerEmail:      owner,
	}

	if err := h.store.Create(sub); err != nil {
		log.Printf("Error creating subscription for %s: %v", owner, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) Delete(c *gin.Context) {
	owner := middleware.CurrentUserEmail(c)
	if owner == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription id"})
		return
	}

	// Not-found covers the unowned case too; another user's record is
	// never acknowledged to exist.
	deleted, err := h.store.DeleteByOwner(id, owner)
	if err != nil {
		log.Printf("Error deleting subscription %s for %s: %v", id, owner, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

// Summary reports the caller's subscription counts and their
// monthly-equivalent spend.
func (h *SubscriptionHandler) Summary(c *gin.Context) {
	owner := middleware.CurrentUserEmail(c)
	if owner == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in"})
		return
	}

	summary, err := h.store.SummaryByOwner(owner)
	if err != nil {
		log.Printf("Error computing summary for %s: %v", owner, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
