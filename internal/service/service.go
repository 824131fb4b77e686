// Package service holds the user, team and authentication use cases.
package service

import "context"

type txManager interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// TeamChecker is the team lookup shared by user-facing services.
type TeamChecker interface {
	ExistsTeam(ctx context.Context, id int64) (bool, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}
