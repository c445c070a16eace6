package repository

import "errors"

var (
	ErrTenantNotFound   = errors.New("tenant profile not found")
	ErrPropertyNotFound = errors.New("property not found")
)
