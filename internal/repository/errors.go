package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrInvalidCollection is returned for collection names that are not plain identifiers.
var ErrInvalidCollection = errors.New("invalid collection name")

// ErrInvalidDocument is returned when an admin document does not fit the target collection.
var ErrInvalidDocument = errors.New("invalid document")
