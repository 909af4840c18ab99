package identity

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
)

var (
	// ErrResolutionFailed is terminal for the session: no retry loop, no
	// anonymous fallback. The caller stays in a blocked state.
	ErrResolutionFailed = errors.New("identity resolution failed")

	ErrVerifierUnavailable = errors.New("token verification is not configured")
)

// Identity is the opaque principal a session acts as.
type Identity struct {
	UID       string `json:"uid"`
	Anonymous bool   `json:"anonymous"`
}

// TokenVerifier checks a bootstrap token and yields the UID it carries.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// FirebaseVerifier verifies ID tokens against Firebase Auth.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}
	return decoded.UID, nil
}

// Resolver establishes the session identity before any data operation.
// A bootstrap token is adopted if it verifies; no token means a fresh
// anonymous identity.
type Resolver struct {
	verifier TokenVerifier
}

func NewResolver(verifier TokenVerifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// Resolve runs once per session start. A token that fails verification is
// a terminal failure, not a downgrade to anonymous.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{UID: uuid.New().String(), Anonymous: true}, nil
	}

	if r.verifier == nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrResolutionFailed, ErrVerifierUnavailable)
	}

	uid, err := r.verifier.Verify(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	return Identity{UID: uid}, nil
}
