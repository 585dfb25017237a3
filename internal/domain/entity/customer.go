package entity

import "time"

// Customer representa un cliente que almacena mercancía en las bodegas de la empresa.
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
