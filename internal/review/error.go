package review

import "errors"

var ErrReviewNotFound = errors.New("review not found")

const (
	FieldName    = "name"
	FieldRating  = "rating"
	FieldComment = "comment"

	MsgNameRequired    = "Please tell us your name"
	MsgRatingInvalid   = "Rating must be a whole number from 1 to 5"
	MsgCommentRequired = "Please write a short review"
)
