package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa (tenant).
type CreateCompanyRequest struct {
	Name    string   `json:"name" validate:"required,min=1,max=200"`
	TaxID   string   `json:"tax_id" validate:"required,min=1,max=20"`
	Address string   `json:"address"`
	Phone   string   `json:"phone"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Modules []string `json:"modules,omitempty"` // vacío = todos los módulos
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Modules   []string  `json:"modules"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
