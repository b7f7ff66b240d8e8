package profile

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/auth"
	"storefront/internal/models"
)

// Coordinator keeps the profile store in step with auth-state changes:
// on sign-in it fetches the profile keyed by the identity, creating a
// minimal one for first-time sign-ins, and on sign-out it clears the
// store. Failures are logged and surfaced through the loading flag; no
// call is retried.
type Coordinator struct {
	db    *mongo.Database
	store *Store
}

func NewCoordinator(db *mongo.Database, store *Store) *Coordinator {
	return &Coordinator{db: db, store: store}
}

// Start registers the auth-state subscription. The returned handle must
// be called on teardown; after that no further syncs are dispatched.
func (c *Coordinator) Start(notifier *auth.Notifier) (unsubscribe func()) {
	return notifier.Subscribe(c.handleAuthChange)
}

func (c *Coordinator) handleAuthChange(identity *auth.Identity) {
	if identity == nil {
		c.store.Clear()
		c.store.SetLoading(false)
		return
	}

	c.store.SetLoading(true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p, err := c.syncProfile(ctx, identity)
	if err != nil {
		log.Println("[PROFILE] [ERROR] profile sync failed:", err)
		c.store.SetLoading(false)
		return
	}

	c.store.Set(p)
}

func (c *Coordinator) syncProfile(ctx context.Context, identity *auth.Identity) (*models.Profile, error) {
	var p models.Profile
	err := c.db.Collection("users").FindOne(ctx, bson.M{"_id": identity.ID}).Decode(&p)
	if err == nil {
		return &p, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// First sign-in: persist the synthesized profile before publishing it.
	synthesized := Synthesize(identity, time.Now())
	if _, err := c.db.Collection("users").InsertOne(ctx, synthesized); err != nil {
		return nil, err
	}

	log.Println("[PROFILE] [INFO] profile synthesized for:", identity.Email)
	return &synthesized, nil
}

// Synthesize builds the minimal profile for an identity that has no
// stored record yet: empty strings for the fields the identity provider
// does not carry, zero age.
func Synthesize(identity *auth.Identity, now time.Time) models.Profile {
	return models.Profile{
		ID:        identity.ID,
		Name:      identity.DisplayName,
		Username:  "",
		Email:     identity.Email,
		Age:       0,
		Address:   "",
		City:      "",
		State:     "",
		Zipcode:   "",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
