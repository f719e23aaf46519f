package gateway

import "time"

// Status is the transport-level class of a dispatch outcome. The mapper
// never produces anything outside these three classes.
type Status int

const (
	StatusOK Status = iota
	StatusForbidden
	StatusNotFound
)

// Reason strings surfaced to callers on denial outcomes.
const (
	ReasonNoSession        = "No session"
	ReasonNotAllowed       = "Not allowed"
	ReasonNotFound         = "Not found"
	ReasonWrongCredentials = "Wrong username or password"
)

// Cache freshness horizons for binary assets: scripts, styles and locale
// bundles get a short window, images and audio a yearlong one.
const (
	shortAssetMaxAge = 4 * time.Hour
	longAssetMaxAge  = 365 * 24 * time.Hour
)

// Asset is a binary response body with its content type and cache horizon.
type Asset struct {
	ContentType string
	MaxAge      time.Duration
	Data        []byte
}

// Outcome is the explicit response descriptor every operation returns.
// Either Payload (JSON) or Asset (binary) may be set, never both.
type Outcome struct {
	Status  Status
	Reason  string
	Payload any
	Asset   *Asset
}

func ok(payload any) Outcome {
	return Outcome{Status: StatusOK, Payload: payload}
}

func okAsset(contentType string, maxAge time.Duration, data []byte) Outcome {
	return Outcome{Status: StatusOK, Asset: &Asset{ContentType: contentType, MaxAge: maxAge, Data: data}}
}

func forbidden(reason string) Outcome {
	return Outcome{Status: StatusForbidden, Reason: reason}
}

func notFound() Outcome {
	return Outcome{Status: StatusNotFound, Reason: ReasonNotFound}
}
