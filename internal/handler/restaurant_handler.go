package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tablecritic/tablecritic/internal/service"
	"github.com/tablecritic/tablecritic/pkg/apperror"
)

type RestaurantHandler struct {
	service service.RestaurantService
}

func NewRestaurantHandler(service service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{service: service}
}

// Home lists every restaurant ordered by name, each with its average
// rating (absent when the restaurant has no reviews yet).
func (h *RestaurantHandler) Home(c *gin.Context) {
	listings, err := h.service.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	render(c, http.StatusOK, "home.html", gin.H{
		"Restaurants": listings,
	})
}

func (h *RestaurantHandler) Detail(c *gin.Context) {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		renderError(c, apperror.ErrNotFound)
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), restaurantID)
	if err != nil {
		renderError(c, err)
		return
	}

	render(c, http.StatusOK, "restaurant_detail.html", gin.H{
		"Restaurant":    detail.Restaurant,
		"Reviews":       detail.Reviews,
		"AverageRating": detail.AvgRating,
	})
}
