package dto

// ─── Auth ────────────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         UsuarioResponse `json:"user"`
}

// ─── Usuarios ────────────────────────────────────────────────────────────────

type CrearUsuarioRequest struct {
	Username string  `json:"username" validate:"required,min=3"`
	Password string  `json:"password" validate:"required,min=8"`
	Nombre   string  `json:"nombre"   validate:"required"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Rol      string  `json:"rol"      validate:"required,oneof=cajero supervisor administrador"`
	CajaID   *string `json:"caja_id"  validate:"omitempty,uuid"`
}

type ActualizarUsuarioRequest struct {
	Nombre   *string `json:"nombre"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Rol      *string `json:"rol"      validate:"omitempty,oneof=cajero supervisor administrador"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	CajaID   *string `json:"caja_id"  validate:"omitempty,uuid"`
}

type UsuarioResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Nombre   string  `json:"nombre"`
	Rol      string  `json:"rol"`
	CajaID   *string `json:"caja_id"`
}
