package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/auth"
	"storefront/internal/models"
)

func TestStoreStartsLoading(t *testing.T) {
	store := NewStore()

	user, loading := store.Current()
	require.Nil(t, user)
	require.True(t, loading)
}

func TestStoreSetPublishesUserAndEndsLoading(t *testing.T) {
	store := NewStore()
	p := &models.Profile{ID: primitive.NewObjectID(), Name: "Ada"}

	store.Set(p)

	user, loading := store.Current()
	require.Equal(t, p, user)
	require.False(t, loading)
}

func TestStoreClearDropsUser(t *testing.T) {
	store := NewStore()
	store.Set(&models.Profile{ID: primitive.NewObjectID()})

	store.Clear()
	store.SetLoading(false)

	user, loading := store.Current()
	require.Nil(t, user)
	require.False(t, loading)
}

func TestSynthesizeUsesEmptyStringDefaults(t *testing.T) {
	identity := &auth.Identity{
		ID:          primitive.NewObjectID(),
		Email:       "new@example.com",
		DisplayName: "New User",
	}
	now := time.Now()

	p := Synthesize(identity, now)

	require.Equal(t, identity.ID, p.ID)
	require.Equal(t, "new@example.com", p.Email)
	require.Equal(t, "New User", p.Name)
	require.Equal(t, "", p.Username)
	require.Equal(t, "", p.Address)
	require.Equal(t, "", p.City)
	require.Equal(t, "", p.State)
	require.Equal(t, "", p.Zipcode)
	require.Equal(t, 0, p.Age)
	require.Equal(t, now, p.CreatedAt)
}

func TestSynthesizeWithoutDisplayName(t *testing.T) {
	p := Synthesize(&auth.Identity{ID: primitive.NewObjectID(), Email: "x@example.com"}, time.Now())
	require.Equal(t, "", p.Name)
}
