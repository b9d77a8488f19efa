package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

const testSecret = "test-secret"

type tokenTable struct {
	byToken map[string]model.Display
	err     error
}

func (f tokenTable) GetDisplayByToken(_ context.Context, token string) (model.Display, error) {
	if f.err != nil {
		return model.Display{}, f.err
	}
	d, ok := f.byToken[token]
	if !ok {
		return model.Display{}, sql.ErrNoRows
	}
	return d, nil
}

func newAuthRouter(finder DisplayFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DeviceAuth(testSecret, finder))
	r.GET("/whoami", func(c *gin.Context) {
		d, ok := GetCurrentDisplay(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": d.ID})
	})
	return r
}

func call(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestDeviceAuthAcceptsPairedDisplayToken(t *testing.T) {
	token, err := GenerateDeviceToken(7, testSecret, time.Hour)
	require.NoError(t, err)
	r := newAuthRouter(tokenTable{byToken: map[string]model.Display{token: {ID: 7, Paired: true}}})

	rec := call(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())
}

func TestDeviceAuthRejectionsAreIndistinguishable(t *testing.T) {
	good, _ := GenerateDeviceToken(7, testSecret, time.Hour)
	otherSubject, _ := GenerateDeviceToken(8, testSecret, time.Hour)
	wrongSecret, _ := GenerateDeviceToken(7, "nope", time.Hour)
	expired, _ := GenerateDeviceToken(7, testSecret, -time.Minute)
	unknown, _ := GenerateDeviceToken(9, testSecret, time.Hour)

	r := newAuthRouter(tokenTable{byToken: map[string]model.Display{
		good:         {ID: 7},
		otherSubject: {ID: 7},
	}})

	cases := map[string]string{
		"missing header":  "",
		"wrong scheme":    "Basic " + good,
		"empty token":     "Bearer ",
		"garbage":         "Bearer not-a-jwt",
		"wrong secret":    "Bearer " + wrongSecret,
		"expired":         "Bearer " + expired,
		"unknown token":   "Bearer " + unknown,
		"subject differs": "Bearer " + otherSubject,
	}
	for name, header := range cases {
		rec := call(r, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String(), name)
	}
}

func TestDeviceAuthRejectsNonHMACTokens(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 7})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	r := newAuthRouter(tokenTable{byToken: map[string]model.Display{s: {ID: 7}}})
	assert.Equal(t, http.StatusUnauthorized, call(r, "Bearer "+s).Code)
}

func TestDeviceAuthStorageFailureIsInternal(t *testing.T) {
	token, _ := GenerateDeviceToken(7, testSecret, time.Hour)
	r := newAuthRouter(tokenTable{err: errors.New("db down")})

	rec := call(r, "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestParseDeviceTokenRejectsFractionalSubject(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 7.5})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = parseDeviceToken(s, testSecret)
	assert.Error(t, err)
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}
