package utils

import (
	"context"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client. The service
// account key path comes from FIREBASE_CREDENTIALS (default serviceAccountKey.json).
func FirebaseInit() {
	ctx := context.Background()

	keyPath := os.Getenv("FIREBASE_CREDENTIALS")
	if keyPath == "" {
		keyPath = "serviceAccountKey.json"
	}
	opt := option.WithCredentialsFile(keyPath)

	if _, err := os.Stat(keyPath); err != nil {
		log.Printf("firebase: credentials file %s not found, push notifications disabled", keyPath)
		return
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.Fatalf("firebase: error initializing app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Fatalf("firebase: error getting Messaging client: %v", err)
	}

	FCMClient = client
}
