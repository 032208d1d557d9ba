package domain

// Role of an authenticated account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account owning a credit wallet
type User struct {
	ID          int64
	Name        string
	Username    string
	Email       string
	Role        Role
	ResortID    *int64 // set for admins only
	IsValidated bool
	Wallet      int64
}

// Admin is the capability required for resort-scoped mutations.
// ResortID always comes from the server-side identity, never from the request body.
type Admin struct {
	UserID   int64
	ResortID int64
}

// Resort is the tenant boundary owning services and admins
type Resort struct {
	ID          int64
	Name        string
	Location    string
	Description string
}

// Identity аутентифицированный вызывающий, извлеченный из токена
type Identity struct {
	UserID   int64
	Role     Role
	ResortID *int64
}

// AsAdmin возвращает capability администратора, если она есть у вызывающего
func (i Identity) AsAdmin() (Admin, bool) {
	if i.Role != RoleAdmin || i.ResortID == nil {
		return Admin{}, false
	}
	return Admin{UserID: i.UserID, ResortID: *i.ResortID}, true
}
