// Package dto содержит объекты передачи данных сервиса учетных записей.
package dto

// RegisterRequest содержит данные для регистрации учетной записи.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// RegisterResponse содержит эхо созданной учетной записи без пароля.
type RegisterResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TokenRequest содержит учетные данные для получения токена.
type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse содержит выданный токен доступа.
type TokenResponse struct {
	Access string `json:"access"`
}

// ProfileView содержит поля профиля, видимые владельцу учетной записи.
type ProfileView struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileUpdate содержит разреженный набор изменяемых полей профиля.
// Nil-поле означает "не менять".
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}
