package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tablecritic/tablecritic/internal/dto"
	"github.com/tablecritic/tablecritic/internal/service"
	"github.com/tablecritic/tablecritic/pkg/apperror"
	"github.com/tablecritic/tablecritic/pkg/forms"
)

type ReviewHandler struct {
	reviewService     service.ReviewService
	restaurantService service.RestaurantService
}

func NewReviewHandler(reviewService service.ReviewService, restaurantService service.RestaurantService) *ReviewHandler {
	return &ReviewHandler{
		reviewService:     reviewService,
		restaurantService: restaurantService,
	}
}

// NewForm renders the add-review form for an existing restaurant.
func (h *ReviewHandler) NewForm(c *gin.Context) {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		renderError(c, apperror.ErrNotFound)
		return
	}

	restaurant, err := h.restaurantService.Get(c.Request.Context(), restaurantID)
	if err != nil {
		renderError(c, err)
		return
	}

	render(c, http.StatusOK, "add_review.html", gin.H{
		"Restaurant": restaurant,
		"Rating":     "",
		"Body":       "",
	})
}

// Create persists a review authored by the session principal against the
// restaurant named in the route. The restaurant is resolved before the form
// is validated, so an unknown id is a 404 regardless of the payload.
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		renderError(c, err)
		return
	}

	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		renderError(c, apperror.ErrNotFound)
		return
	}

	restaurant, err := h.restaurantService.Get(c.Request.Context(), restaurantID)
	if err != nil {
		renderError(c, err)
		return
	}

	var form dto.ReviewForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusOK, "add_review.html", gin.H{
			"Restaurant": restaurant,
			"Errors":     forms.FromBindingError(err),
			"Rating":     c.PostForm("rating"),
			"Body":       c.PostForm("body"),
		})
		return
	}

	if _, err := h.reviewService.Create(c.Request.Context(), userID, restaurantID, form); err != nil {
		renderError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/restaurant/"+restaurantID.String()+"/")
}

func (h *ReviewHandler) Detail(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		renderError(c, apperror.ErrNotFound)
		return
	}

	review, err := h.reviewService.Get(c.Request.Context(), reviewID)
	if err != nil {
		renderError(c, err)
		return
	}

	render(c, http.StatusOK, "review_detail.html", gin.H{
		"Review":     review,
		"Restaurant": review.Restaurant,
	})
}

// EditForm renders the prefilled update form. Only the author gets this
// far; everybody else sees 403 (404 when the review does not exist).
func (h *ReviewHandler) EditForm(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		renderError(c, err)
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		renderError(c, apperror.ErrNotFound)
		return
	}

	review, err := h.reviewService.GetOwned(c.Request.Context(), userID, reviewID)
	if err != nil {
		renderError(c, err)
		return
	}

	render(c, http.StatusOK, "update_review.html", gin.H{
		"Review":     review,
		"Restaurant": review.Restaurant,
		"Rating":     review.Rating,
		"Body":       review.Body,
	})
}

func (h *ReviewHandler) Update(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		renderError(c, err)
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		renderError(c, apperror.ErrNotFound)
		return
	}

	// Existence and ownership are settled before the payload is looked at.
	review, err := h.reviewService.GetOwned(c.Request.Context(), userID, reviewID)
	if err != nil {
		renderError(c, err)
		return
	}

	var form dto.ReviewForm
	if err := c.ShouldBind(&form); err != nil {
		render(c, http.StatusOK, "update_review.html", gin.H{
			"Review":     review,
			"Restaurant": review.Restaurant,
			"Errors":     forms.FromBindingError(err),
			"Rating":     c.PostForm("rating"),
			"Body":       c.PostForm("body"),
		})
		return
	}

	if _, err := h.reviewService.Update(c.Request.Context(), userID, reviewID, form); err != nil {
		renderError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/review/"+reviewID.String()+"/")
}

// ConfirmDelete shows the read-only confirmation page. The destructive
// action only happens on the follow-up POST, never on navigation.
func (h *ReviewHandler) ConfirmDelete(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		renderError(c, err)
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		renderError(c, apperror.ErrNotFound)
		return
	}

	review, err := h.reviewService.GetOwned(c.Request.Context(), userID, reviewID)
	if err != nil {
		renderError(c, err)
		return
	}

	render(c, http.StatusOK, "delete_review.html", gin.H{
		"Review":     review,
		"Restaurant": review.Restaurant,
	})
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		renderError(c, err)
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		renderError(c, apperror.ErrNotFound)
		return
	}

	review, err := h.reviewService.Delete(c.Request.Context(), userID, reviewID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/restaurant/"+review.RestaurantID.String()+"/")
}
