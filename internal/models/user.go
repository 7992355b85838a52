package models

const (
	RoleAdmin = "admin"
	RoleWarga = "warga"
)

type User struct {
	ID           string `json:"_id,omitempty" bson:"-"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"passwordHash,omitempty" bson:"passwordHash"`
	Name         string `json:"name" bson:"name"`
	Role         string `json:"role" bson:"role"`
	CreatedAt    string `json:"createdAt" bson:"createdAt"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
