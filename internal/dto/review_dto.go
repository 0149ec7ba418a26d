package dto

// ReviewForm is bound from the add/update review form posts. Rating is
// inclusive on both bounds; the body may be left empty.
type ReviewForm struct {
	Rating int    `form:"rating" binding:"required,min=1,max=5"`
	Body   string `form:"body"`
}
