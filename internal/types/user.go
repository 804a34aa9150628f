package types

import (
	"time"
)

type User struct {
	ID             string    `bson:"id" json:"id"`
	Email          string    `bson:"email" json:"email"`
	HashedPassword string    `bson:"hashed_password" json:"-"`
	FullName       string    `bson:"full_name" json:"full_name"`
	EducationLevel string    `bson:"education_level,omitempty" json:"education_level,omitempty"`
	StudyInterests []string  `bson:"study_interests,omitempty" json:"study_interests,omitempty"`
	IsActive       bool      `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
