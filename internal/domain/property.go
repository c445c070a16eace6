package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// PropertyListing — объект аренды с атрибутами, по которым считается совместимость.
type PropertyListing struct {
	ID          uuid.UUID
	OwnerUserID uuid.UUID
	Title       string

	RentAmount float64
	City       string
	Province   string

	Bedrooms     *int32
	PropertyType *string
	Furnished    *bool

	PetsAllowed    bool
	SmokingAllowed bool

	Status PropertyStatus
}

// PropertyStatus — статус объекта аренды.
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "active"   // Доступен для матчинга
	PropertyStatusInactive PropertyStatus = "inactive" // Снят с публикации
	PropertyStatusRented   PropertyStatus = "rented"   // Сдан
)

func (s PropertyStatus) String() string {
	return string(s)
}

// IsActive сообщает, участвует ли объект в пуле кандидатов.
func (p PropertyListing) IsActive() bool {
	return p.Status == PropertyStatusActive
}

// Validate проверяет арендную плату.
func (p PropertyListing) Validate() error {
	if !isFinite(p.RentAmount) {
		return fmt.Errorf("%w: property %s: rent must be a finite number", ErrInvalidInput, p.ID)
	}
	if p.RentAmount < 0 {
		return fmt.Errorf("%w: property %s: rent %.2f must not be negative", ErrInvalidInput, p.ID, p.RentAmount)
	}
	return nil
}
