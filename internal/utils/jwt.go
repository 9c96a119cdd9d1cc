package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
)

// Audiences keep admin sessions and check tokens from being swapped for
// one another even though both are signed with JWT_SECRET.
const (
	AudienceAdmin = "admin"
	AudienceCheck = "check"
)

// ErrInvalidCheckToken is returned for check tokens that are malformed,
// expired, or signed with a different secret.
var ErrInvalidCheckToken = errors.New("invalid check token")

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and sent in the Authorization header when
// calling the admin endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for the admin gate.  The
// claims carry the subject, the role, the admin audience, expiration (exp)
// and issued at (iat).
func NewAccessToken(secret, subject, role string, ttlMin int, now time.Time) (AccessToken, error) {
	exp := now.UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"aud":  AudienceAdmin,
		"exp":  exp.Unix(),
		"iat":  now.UTC().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// checkClaims binds a commit to the exact request that was evaluated.
type checkClaims struct {
	MemberID   string `json:"mid"`
	MemberName string `json:"mname"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Status     string `json:"status"`
	jwt.RegisteredClaims
}

// NewCheckToken signs the evaluated request and its outcome.  The token is
// handed to the client with the check result and must come back with the
// commit.
func NewCheckToken(secret string, req model.CheckRequest, status string, ttl time.Duration, now time.Time) (string, error) {
	claims := checkClaims{
		MemberID:   req.MemberID,
		MemberName: req.MemberName,
		Start:      req.Start.String(),
		End:        req.End.String(),
		Status:     status,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{AudienceCheck},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseCheckToken verifies raw against secret as of now and returns the
// request and status it was issued for.
func ParseCheckToken(secret, raw string, now time.Time) (model.CheckRequest, string, error) {
	var claims checkClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(AudienceCheck),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return model.CheckRequest{}, "", errors.Join(ErrInvalidCheckToken, err)
	}
	start, err := calendar.Parse(claims.Start)
	if err != nil {
		return model.CheckRequest{}, "", errors.Join(ErrInvalidCheckToken, err)
	}
	end, err := calendar.Parse(claims.End)
	if err != nil {
		return model.CheckRequest{}, "", errors.Join(ErrInvalidCheckToken, err)
	}
	req := model.CheckRequest{MemberID: claims.MemberID, MemberName: claims.MemberName, Start: start, End: end}
	return req, claims.Status, nil
}
