package models

import (
	"strings"

	"github.com/gosimple/slug"
)

// User is serialized with its default view only: the password hash and roles never
// leave the server.
type User struct {
	ID        int     `json:"id"`
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar,omitempty"`
	Hash      string  `json:"-"`
	Slug      string  `json:"slug"`
	Roles     []Role  `json:"-"`
}

type Role struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

const RoleAdmin = "ROLE_ADMIN"

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Email     string  `json:"email"`
	Avatar    *string `json:"avatar,omitempty"`
	Password  string  `json:"password"`
}

type Tokens struct {
	AccessToken string `json:"access_token"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.Firstname + " " + u.Lastname)
}

// InitializeSlug fills the slug from the full name unless one is already set.
func (u *User) InitializeSlug() {
	if u.Slug == "" {
		u.Slug = slug.Make(u.FullName())
	}
}

func (u *User) PreSave() {
	u.InitializeSlug()
}

func (u *User) HasRole(title string) bool {
	for _, r := range u.Roles {
		if r.Title == title {
			return true
		}
	}
	return false
}

func (u *User) RoleTitles() []string {
	titles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		titles = append(titles, r.Title)
	}
	return titles
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Firstname) == "" {
		return invalid("firstname", "firstname is required")
	}
	if strings.TrimSpace(u.Lastname) == "" {
		return invalid("lastname", "lastname is required")
	}
	if !strings.Contains(u.Email, "@") {
		return invalid("email", "email %q is not valid", u.Email)
	}
	return nil
}
