package entity

// Roles válidos en el claim "role" del token emitido por el proveedor de autenticación.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)
