package model

import (
	"slices"
	"time"
)

// Weekdays lists the accepted dayOfWeek values in calendar order.
var Weekdays = []string{
	"sunday",
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
}

// ValidDay reports whether d is one of Weekdays. Matching is case-sensitive.
func ValidDay(d string) bool {
	return slices.Contains(Weekdays, d)
}

type User struct {
	ID           string
	FirstName    string
	LastName     string
	BirthDate    time.Time
	City         string
	Country      string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is a User without its password hash.
type PublicUser struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	BirthDate time.Time `json:"birthDate"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Email     string    `json:"email"`
}

// Profile is the projection returned next to a session token.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		BirthDate: u.BirthDate,
		City:      u.City,
		Country:   u.Country,
		Email:     u.Email,
	}
}

func (u *User) Profile() Profile {
	return Profile{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

type Event struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	DayOfWeek   string    `json:"dayOfWeek"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"-"`
}
