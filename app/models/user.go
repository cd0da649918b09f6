package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	ROLE_ADMIN                = "Admin"
	ROLE_MFT_USER             = "MFT User"
	ROLE_CUSTOMER_ADMIN       = "Customer Admin"
	ROLE_CUSTOMER_CONTRIBUTOR = "Customer Contributor"
)

// User is an operator account scoped to a tenant. Roles are stored as a
// comma-separated list; email is unique within the tenant, not globally.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TenantID    uint       `gorm:"index:idx_users_tenant_email,unique;not null" json:"tenant_id"`
	Tenant      Tenant     `gorm:"foreignKey:TenantID" json:"-"`
	Email       string     `gorm:"index:idx_users_tenant_email,unique;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Name        string     `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Password    string     `gorm:"type:text" json:"-" validate:"required,min=6"`
	Roles       string     `gorm:"type:varchar(255)" json:"roles"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`
	Auditable
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds a user with a hashed password and validated fields.
func CreateUser(tenantID uint, name, email, password string, roles ...string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		TenantID: tenantID,
		Name:     name,
		Email:    email,
		Password: pw,
		Roles:    strings.Join(roles, ","),
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPassword verifies the provided password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// HasRole reports whether the user carries the given role name.
func (u *User) HasRole(role string) bool {
	for _, r := range strings.Split(u.Roles, ",") {
		if strings.TrimSpace(r) == role {
			return true
		}
	}
	return false
}

// RoleList returns the user's roles as a slice.
func (u *User) RoleList() []string {
	if u.Roles == "" {
		return nil
	}
	parts := strings.Split(u.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
