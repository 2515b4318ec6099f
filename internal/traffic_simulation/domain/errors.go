package domain

import "errors"

var (
	ErrEdgeNotFound        = errors.New("edge not found")
	ErrVertexNotFound      = errors.New("vertex not found")
	ErrIncidentNotFound    = errors.New("incident not found")
	ErrIncidentConflict    = errors.New("edge already has an active incident")
	ErrInvalidIncidentType = errors.New("invalid incident type")
	ErrInvalidConfig       = errors.New("invalid traffic configuration")
	ErrEngineClosed        = errors.New("traffic engine is not running")
	ErrSnapshotNotFound    = errors.New("traffic snapshot not found")
	ErrHistoryUnavailable  = errors.New("incident history requires redis")
)
