package store

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// Firebase backs the Store interface with the Firebase Realtime Database.
type Firebase struct {
	client *db.Client
}

// NewFirebase initializes the Realtime Database client from a database URL
// and service-account credentials passed as inline JSON.
func NewFirebase(ctx context.Context, databaseURL, credentialsJSON string) (*Firebase, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("firebase database URL is not configured")
	}
	if credentialsJSON == "" {
		return nil, fmt.Errorf("firebase credentials are not configured")
	}

	opt := option.WithCredentialsJSON([]byte(credentialsJSON))
	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: databaseURL}, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %v", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase Database client: %v", err)
	}

	return &Firebase{client: client}, nil
}

func (f *Firebase) Get(ctx context.Context, path string) (interface{}, error) {
	var v interface{}
	if err := f.client.NewRef(path).Get(ctx, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (f *Firebase) Set(ctx context.Context, path string, value interface{}) error {
	return f.client.NewRef(path).Set(ctx, value)
}

func (f *Firebase) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	return f.client.NewRef(path).Update(ctx, fields)
}
