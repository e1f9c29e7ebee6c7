package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account and its public profile.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	FavoriteDrinks []string           `bson:"favorite_drinks" json:"favorite_drinks"`
	SoberDate      *time.Time         `bson:"sober_date,omitempty" json:"sober_date,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
	IsActive       bool               `bson:"is_active" json:"is_active"`
}

// DaysSober returns the number of full days since SoberDate, or nil when
// the user has not set one.
func (u *User) DaysSober() *int {
	if u.SoberDate == nil {
		return nil
	}
	days := int(time.Since(*u.SoberDate).Hours() / 24)
	return &days
}
