// Package firebase initializes the Firebase Admin SDK clients the server
// needs.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/janisto/provider-profile/internal/platform/config"
)

// Needs selects which clients to create.
type Needs struct {
	Auth      bool
	Firestore bool
}

// Clients holds initialized Firebase clients. Unrequested clients are nil.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// NewClients creates the Firebase app for cfg and the clients in needs.
func NewClients(ctx context.Context, cfg config.Firebase, needs Needs) (*Clients, error) {
	if !needs.Auth && !needs.Firestore {
		return &Clients{}, nil
	}
	if cfg.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firebase app: %w", err)
	}

	clients := &Clients{}
	if needs.Auth {
		if clients.Auth, err = app.Auth(ctx); err != nil {
			return nil, fmt.Errorf("creating auth client: %w", err)
		}
	}
	if needs.Firestore {
		if clients.Firestore, err = app.Firestore(ctx); err != nil {
			return nil, fmt.Errorf("creating firestore client: %w", err)
		}
	}
	return clients, nil
}

func clientOptions(cfg config.Firebase) ([]option.ClientOption, error) {
	if cfg.CredentialsFile == "" {
		return nil, nil
	}
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	return []option.ClientOption{option.WithCredentialsJSON(creds)}, nil
}

// Close closes the Firestore client if one was created.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
