package entity

import "time"

// Commodity tipo de mercancía almacenada (ej. arroz, maíz, café).
type Commodity struct {
	ID        string
	CompanyID string
	Name      string
	Unit      string // unidad de conteo, por defecto "bag"
	CreatedAt time.Time
}
