package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func signedToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestParseBearer(t *testing.T) {
	account := uuid.New()
	token := signedToken(t, &Claims{
		Workspaces:      []string{"workspace1"},
		WorkspacesOwned: []string{"workspace2"},
		BillingAccounts: []string{account.String()},
		RealmAccess:     RealmAccess{Roles: []string{"user"}},
	})

	claims, err := ParseBearer("Bearer " + token)
	assert.NoError(t, err)
	assert.Equal(t, []string{"workspace1"}, claims.Workspaces)
	assert.Equal(t, []string{"workspace2"}, claims.WorkspacesOwned)
	assert.True(t, claims.CanReadAccount(account))
}

func TestParseBearerFailures(t *testing.T) {
	_, err := ParseBearer("")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = ParseBearer("Basic abc")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = ParseBearer("Bearer ")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = ParseBearer("Bearer not.a.token")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestWorkspaceAccess(t *testing.T) {
	claims := &Claims{
		Workspaces:      []string{"member-ws"},
		WorkspacesOwned: []string{"owned-ws"},
	}

	assert.True(t, claims.CanReadWorkspace("member-ws"))
	assert.True(t, claims.CanReadWorkspace("owned-ws"))
	assert.False(t, claims.CanReadWorkspace("other-ws"))
}

func TestAccountAccess(t *testing.T) {
	account := uuid.New()
	claims := &Claims{BillingAccounts: []string{account.String(), "garbage"}}

	assert.True(t, claims.CanReadAccount(account))
	assert.False(t, claims.CanReadAccount(uuid.New()))
}

func TestHubAdminBypassesChecks(t *testing.T) {
	claims := &Claims{RealmAccess: RealmAccess{Roles: []string{"hub_admin"}}}

	assert.True(t, claims.IsHubAdmin())
	assert.True(t, claims.CanReadWorkspace("any"))
	assert.True(t, claims.CanReadAccount(uuid.New()))
}
