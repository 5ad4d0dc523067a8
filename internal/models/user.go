package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
	RoleReporter   = "reporter"
)

// User is an admin or reporter account. The superadmin is not stored.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"`
	Role       string             `bson:"role" json:"role"`
	IsApproved bool               `bson:"isApproved" json:"isApproved"`
	ReporterID string             `bson:"reporterId,omitempty" json:"reporterId,omitempty"`
	ApprovedAt *time.Time         `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	Avatar     MediaRef           `bson:"avatar,omitempty" json:"-"`
	Region     string             `bson:"region,omitempty" json:"region"`
	PressRole  string             `bson:"pressRole,omitempty" json:"pressRole"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.ApprovedAt != nil {
		t := *u.ApprovedAt
		c.ApprovedAt = &t
	}
	return &c
}
