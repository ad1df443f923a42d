package domain

import "errors"

var (
	ErrEmptyPrompt     = errors.New("empty prompt")
	ErrNoChoices       = errors.New("no choices in response")
	ErrEmptyCompletion = errors.New("empty completion content")
)
