package entity

import "time"

// Company representa una organización/tenant del sistema (multi-tenant).
type Company struct {
	ID        string
	Name      string
	TaxID     string // NIT o identificación tributaria
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleStorage = "storage"
	ModuleBilling = "billing"
	ModuleReports = "reports"
	ModuleAI      = "ai"
)

// AllModules módulos que se activan por defecto al crear una empresa.
var AllModules = []string{ModuleStorage, ModuleBilling, ModuleReports, ModuleAI}

// CompanyModule representa la activación de un módulo SaaS en una empresa.
type CompanyModule struct {
	CompanyID   string
	ModuleName  string     // ver constantes Module*
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
}

// ActiveAt informa si el módulo está activo en el instante t.
func (m CompanyModule) ActiveAt(t time.Time) bool {
	return m.IsActive && (m.ExpiresAt == nil || m.ExpiresAt.After(t))
}
