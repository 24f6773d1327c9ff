package model

import "context"

type User struct {
	ID       int64
	UserName string
	Lang     string
	IsAdmin  bool
}

type UserSource interface {
	GetUser(ctx context.Context, id int64) (*User, error)
}
