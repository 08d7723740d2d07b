package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/infrastructure/auth"
	"github.com/handwerk/backoffice/internal/infrastructure/config"
	"github.com/handwerk/backoffice/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, tenantID, userID int64, role string, expires time.Time) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "backoffice-test",
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		TenantID: tenantID,
		UserID:   userID,
		Role:     role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func authEngine() *gin.Engine {
	verifier := auth.NewTokenVerifier(config.JWTConfig{Secret: testSecret, Issuer: "backoffice-test"}, nil)
	r := gin.New()
	r.Use(RequestID(), JWTAuthMiddleware(JWTMiddlewareConfig{
		Verifier:  verifier,
		SkipPaths: []string{"/health"},
	}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ops", RequireCapability(identity.CapabilityOperations), func(c *gin.Context) {
		caller, _ := GetCaller(c)
		c.JSON(http.StatusOK, caller)
	})
	r.GET("/billing", RequireCapability(identity.CapabilityBilling), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := authEngine()
	valid := signToken(t, 4, 17, "mitarbeiter", time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		path   string
		header string
		status int
		code   string
	}{
		{"skip path", "/health", "", http.StatusOK, ""},
		{"missing header", "/ops", "", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"not bearer", "/ops", "Basic abc", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"garbage token", "/ops", "Bearer abc.def.ghi", http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"expired", "/ops", "Bearer " + signToken(t, 4, 17, "mitarbeiter", time.Now().Add(-time.Minute)), http.StatusUnauthorized, dto.ErrCodeTokenExpired},
		{"unknown role", "/ops", "Bearer " + signToken(t, 4, 17, "chef", time.Now().Add(time.Hour)), http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"valid", "/ops", "Bearer " + valid, http.StatusOK, ""},
		{"capability missing", "/billing", "Bearer " + valid, http.StatusForbidden, dto.ErrCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				resp := decode(t, w)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.code, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.RequestID)
			}
		})
	}
}

func TestJWTAuthMiddleware_ResolvesCaller(t *testing.T) {
	r := authEngine()
	req := httptest.NewRequest(http.MethodGet, "/ops", nil)
	req.Header.Set(AuthHeaderKey, "Bearer "+signToken(t, 4, 17, "Buchhalter", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var caller identity.Caller
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &caller))
	assert.Equal(t, identity.Caller{TenantID: 4, UserID: 17, Role: identity.RoleBuchhalter}, caller)
}

func TestRequireCapability_NoCaller(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireCapability(identity.CapabilityOperations), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", 300))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), MaxRequestIDLength)
}

func TestCORSWithConfig(t *testing.T) {
	r := gin.New()
	r.Use(CORSWithConfig(CORSConfigFrom(config.HTTPConfig{
		CORSAllowOrigins: []string{"https://app.example.de"},
		CORSAllowMethods: []string{"GET", "POST"},
		CORSAllowHeaders: []string{"Authorization"},
	})))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.de")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.de", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, decode(t, w).Error.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)
}

type validatedRequest struct {
	ProjectID int64            `json:"project_id" binding:"required,gt=0"`
	Method    string           `json:"generation_method" binding:"omitempty,generation_method"`
	TaxRate   *decimal.Decimal `json:"tax_rate" binding:"omitempty,decimal_range=0 100"`
	Hours     decimal.Decimal  `json:"hours" binding:"decimal_range=0 24"`
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()
	r := gin.New()
	r.Use(RequestID())
	r.POST("/x", func(c *gin.Context) {
		var req validatedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"valid", `{"project_id":1,"generation_method":"hybrid","tax_rate":"19","hours":"8.5"}`, nil},
		{"tax rate omitted", `{"project_id":1,"hours":"0"}`, nil},
		{"missing project", `{"hours":"1"}`, []string{"project_id"}},
		{"unknown method", `{"project_id":1,"generation_method":"magic","hours":"1"}`, []string{"generation_method"}},
		{"tax out of range", `{"project_id":1,"tax_rate":"120","hours":"1"}`, []string{"tax_rate"}},
		{"hours out of range", `{"project_id":1,"hours":"25"}`, []string{"hours"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(tt.body)))
			if tt.fields == nil {
				assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
				return
			}
			require.Equal(t, http.StatusBadRequest, w.Code)
			resp := decode(t, w)
			assert.Equal(t, dto.ErrCodeInvalidArgument, resp.Error.Code)
			var got []string
			for _, d := range resp.Error.Details {
				got = append(got, d.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var req validatedRequest
		HandleValidationError(c, c.ShouldBindJSON(&req))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error.Message, "Malformed request")
}
