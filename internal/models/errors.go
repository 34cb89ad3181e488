package models

import "errors"

// Sentinel errors shared by the service and repository layers. Handlers
// branch on these to pick status codes; eligibility outcomes are not errors
// and live in the eligibility package instead.
var (
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptNotInProgress = errors.New("attempt is not in progress")
	ErrQuestionNotFound     = errors.New("question not found in quiz")
	ErrForbidden            = errors.New("attempt belongs to another student")
	ErrDuplicateInProgress  = errors.New("an in-progress attempt already exists for this student and quiz")
)
