package session

import (
	"context"
	"testing"
	"time"

	"github.com/mroshb/hanglight/internal/auth"
	"github.com/mroshb/hanglight/internal/database"
	"github.com/mroshb/hanglight/internal/models"
	"github.com/mroshb/hanglight/internal/security"
	"github.com/mroshb/hanglight/internal/services"
	"github.com/mroshb/hanglight/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "session-test-secret-with-at-least-32-chars"

var (
	alice = &auth.Identity{ID: "u-alice", Email: "alice@example.com", Metadata: map[string]string{auth.MetadataHandle: "ALC111"}}
	bob   = &auth.Identity{ID: "u-bob", Email: "bob@example.com", Metadata: map[string]string{auth.MetadataHandle: "BOB222"}}
)

func setup(t *testing.T) (*services.Services, *gorm.DB) {
	t.Helper()
	db, err := database.ConnectMemory()
	require.NoError(t, err)
	return services.New(db, services.Options{}), db
}

func signedIn(t *testing.T, svc *services.Services, identity *auth.Identity) *Session {
	t.Helper()
	s := New(svc)
	require.NoError(t, s.SignIn(context.Background(), identity))
	return s
}

func TestAttach_FollowsProviderEvents(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	provider := security.NewJWTProvider(testSecret)
	s := New(svc)
	require.NoError(t, s.Attach(ctx, provider))
	assert.False(t, s.SignedIn())

	token, err := security.GenerateJWT(alice, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = provider.SignIn(token)
	require.NoError(t, err)

	require.True(t, s.SignedIn())
	view := s.View()
	assert.Equal(t, "ALC111", view.Profile.Handle)
	assert.Equal(t, "Welcome to Hanglight!", view.Message)
	assert.NotNil(t, view.Friends)
	assert.NotNil(t, view.Requests)

	provider.SignOut()
	assert.False(t, s.SignedIn())
	assert.Nil(t, s.View().Profile)

	s.Detach()
	_, err = provider.SignIn(token)
	require.NoError(t, err)
	assert.False(t, s.SignedIn())
}

func TestAttach_UsesExistingSession(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	provider := security.NewJWTProvider(testSecret)
	token, err := security.GenerateJWT(bob, testSecret, time.Hour)
	require.NoError(t, err)
	_, err = provider.SignIn(token)
	require.NoError(t, err)

	s := New(svc)
	require.NoError(t, s.Attach(ctx, provider))
	defer s.Detach()

	require.True(t, s.SignedIn())
	assert.Equal(t, "BOB222", s.View().Profile.Handle)
}

func TestOperations_RequireSignIn(t *testing.T) {
	svc, _ := setup(t)
	s := New(svc)

	res := s.SetStatusLight(context.Background(), models.LightGreen)
	assert.False(t, res.OK)
	assert.Equal(t, errors.ErrCodeUnauthorized, res.Code)
	assert.Equal(t, "Please sign in first", res.Message)

	err := s.Refresh(context.Background())
	assert.Equal(t, errors.ErrCodeUnauthorized, errors.CodeOf(err))
}

func TestSignIn_FailureClearsPreviousUser(t *testing.T) {
	svc, _ := setup(t)
	s := signedIn(t, svc, alice)
	ctx := context.Background()

	err := s.SignIn(ctx, &auth.Identity{ID: "u-carol"})
	assert.Equal(t, errors.ErrCodeValidation, errors.CodeOf(err))
	assert.False(t, s.SignedIn())

	view := s.View()
	assert.Nil(t, view.Profile)
	assert.Empty(t, view.Friends)
	assert.Contains(t, view.Message, "Profile creation failed")

	res := s.SetStatusLight(ctx, models.LightGreen)
	assert.False(t, res.OK)
	assert.Equal(t, errors.ErrCodeUnauthorized, res.Code)

	stored, err := svc.Identity.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LightRed, stored.StatusLight)
}

func TestRequestFlow_UpdatesBothViews(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	a := signedIn(t, svc, alice)
	b := signedIn(t, svc, bob)

	res := a.SendRequest(ctx, "bob222", "")
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "Friend request sent to BOB222!", res.Message)
	assert.Len(t, a.View().Outbound, 1)

	require.NoError(t, b.Refresh(ctx))
	requests := b.View().Requests
	require.Len(t, requests, 1)
	assert.Equal(t, "ALC111", requests[0].OtherHandle)

	res = b.Respond(ctx, requests[0].ID, models.RequestStatusAccepted)
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "Friend request accepted!", res.Message)
	assert.Empty(t, b.View().Requests)
	require.Len(t, b.View().Friends, 1)

	res = a.SetStatusLight(ctx, models.LightGreen)
	require.True(t, res.OK)
	assert.Equal(t, "Status updated to green! 🚦", res.Message)
	assert.Empty(t, a.View().Outbound)

	require.NoError(t, b.Refresh(ctx))
	friends := b.View().Friends
	require.Len(t, friends, 1)
	assert.Equal(t, models.LightGreen, friends[0].StatusLight)

	res = b.SetNickname(ctx, friends[0].FriendshipID, "Al")
	require.True(t, res.OK)
	assert.Equal(t, "Al", b.View().Friends[0].DisplayName)

	res = b.RemoveFriend(ctx, friends[0].FriendshipID)
	require.True(t, res.OK)
	assert.Empty(t, b.View().Friends)
}

func TestDomainErrorsKeepTheirMessage(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	a := signedIn(t, svc, alice)

	res := a.SendRequest(ctx, "alice@example.com", "")
	assert.False(t, res.OK)
	assert.Equal(t, errors.ErrCodeSelfRequest, res.Code)
	assert.Equal(t, "You can't add yourself!", res.Message)
	assert.Equal(t, "You can't add yourself!", a.View().Message)

	res = a.SendRequest(ctx, "ghost@example.com", "")
	assert.Equal(t, "User not found", res.Message)

	res = a.ClaimHandle(ctx, "nope")
	assert.Equal(t, errors.ErrCodeValidation, res.Code)
}

func TestWalletMessages(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	a := signedIn(t, svc, alice)

	res := a.SetWallet(ctx, "0xabcdef0123456789")
	require.True(t, res.OK)
	assert.Equal(t, "Wallet address saved! 🎉", res.Message)
	require.NotNil(t, a.View().Profile.WalletAddress)

	res = a.SetWallet(ctx, "")
	require.True(t, res.OK)
	assert.Equal(t, "Wallet address removed", res.Message)
	assert.Nil(t, a.View().Profile.WalletAddress)
}

func TestRefresh_FailedLoadsResetLists(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	a := signedIn(t, svc, alice)
	b := signedIn(t, svc, bob)

	require.True(t, a.SendRequest(ctx, bob.Email, "").OK)
	require.NoError(t, b.Refresh(ctx))
	require.Len(t, b.View().Requests, 1)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = b.Refresh(ctx)
	require.Error(t, err)

	view := b.View()
	assert.NotNil(t, view.Profile)
	assert.Empty(t, view.Requests)
	assert.Empty(t, view.Friends)
	assert.Empty(t, view.Outbound)
}

func TestView_ReturnsCopy(t *testing.T) {
	svc, _ := setup(t)
	a := signedIn(t, svc, alice)

	view := a.View()
	view.Profile.Handle = "XXX000"
	view.Message = "changed"

	assert.Equal(t, "ALC111", a.View().Profile.Handle)
	assert.Equal(t, "Welcome to Hanglight!", a.View().Message)
}
