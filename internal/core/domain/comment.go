package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lusodesk/helpdesk-backend/internal/core/errors"
)

const MaxCommentLength = 5000

// Comment is a message attached to a ticket.
type Comment struct {
	ID        int64
	TicketID  int64
	AuthorID  uuid.UUID
	Body      string
	CreatedAt time.Time
}

// CommentParams holds the input for creating a comment.
type CommentParams struct {
	TicketID int64
	AuthorID uuid.UUID
	Body     string
}

// NewComment is a factory function to create a valid new comment.
func NewComment(params CommentParams) (*Comment, error) {
	if params.Body == "" {
		return nil, apperrors.ErrCommentBodyRequired
	}
	if len(params.Body) > MaxCommentLength {
		return nil, apperrors.ErrCommentBodyTooLong
	}

	return &Comment{
		TicketID:  params.TicketID,
		AuthorID:  params.AuthorID,
		Body:      params.Body,
		CreatedAt: time.Now().UTC(),
	}, nil
}
