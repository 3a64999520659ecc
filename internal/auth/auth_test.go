package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myimpact/internal/model"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "myimpact"
)

var reviewer = model.Actor{UserID: "ngo-042", Name: "Harlem Grown", Role: model.RoleNGOPartner}

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue(reviewer, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := Parse(tok.AccessToken, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, reviewer, claims.Actor())
}

func TestParseRejects(t *testing.T) {
	valid, err := Issue(reviewer, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	expired, err := Issue(reviewer, testIssuer, testKey, -time.Minute)
	require.NoError(t, err)
	badRole, err := Issue(model.Actor{UserID: "x", Role: "dean"}, testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	cases := map[string]struct {
		token, key, issuer string
	}{
		"wrong key":    {valid.AccessToken, "other-key", testIssuer},
		"wrong issuer": {valid.AccessToken, testKey, "someone-else"},
		"expired":      {expired.AccessToken, testKey, testIssuer},
		"unknown role": {badRole.AccessToken, testKey, testIssuer},
		"garbage":      {"not.a.jwt", testKey, testIssuer},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(tc.token, tc.key, tc.issuer)
			assert.Error(t, err)
		})
	}
}

func TestIssueRequiresKey(t *testing.T) {
	_, err := Issue(reviewer, testIssuer, "", time.Hour)
	assert.Error(t, err)
}

func TestStaticProvider(t *testing.T) {
	actor, err := NewStaticProvider(model.Actor{}).Actor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DevAdmin, actor)

	actor, err = NewStaticProvider(reviewer).Actor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, reviewer, actor)
}

func TestTokenProviderWithoutActor(t *testing.T) {
	_, err := TokenProvider{}.Actor(context.Background())
	assert.ErrorIs(t, err, ErrNoActor)
}

func TestBearerAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BearerAuth(testKey, testIssuer))
	r.GET("/whoami", func(c *gin.Context) {
		actor, err := TokenProvider{}.Actor(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, actor)
	})

	tok, err := Issue(reviewer, testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		want   int
	}{
		"valid":     {"Bearer " + tok.AccessToken, http.StatusOK},
		"lowercase": {"bearer " + tok.AccessToken, http.StatusOK},
		"missing":   {"", http.StatusUnauthorized},
		"basic":     {"Basic Zm9vOmJhcg==", http.StatusUnauthorized},
		"tampered":  {"Bearer " + tok.AccessToken + "x", http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"user_id":"ngo-042"`)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc", token: "abc", ok: true},
		{header: "BEARER  abc ", token: "abc", ok: true},
		{header: "Bearer", ok: false},
		{header: "Bearer   ", ok: false},
		{header: "Token abc", ok: false},
		{header: "", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.header, func(t *testing.T) {
			token, ok := bearerToken(tc.header)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.token, token)
		})
	}
}
