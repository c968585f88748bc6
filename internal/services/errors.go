package services

import "errors"

// Service errors
var (
	ErrChartNotFound  = errors.New("chart not found")
	ErrSourceNotFound = errors.New("source file not found")
)
