package entity

import "time"

// Warehouse representa una bodega donde se almacenan los lotes de los clientes.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
