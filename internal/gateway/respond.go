package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WriteOutcome maps a dispatch outcome onto the HTTP response: status
// class, reason, and for binary assets the content type plus cache
// headers. It always writes exactly one of the three status classes.
func WriteOutcome(w http.ResponseWriter, out Outcome) {
	switch out.Status {
	case StatusForbidden:
		writeReason(w, http.StatusForbidden, out.Reason, ReasonNotAllowed)
	case StatusNotFound:
		writeReason(w, http.StatusNotFound, out.Reason, ReasonNotFound)
	default:
		if out.Asset != nil {
			writeAsset(w, out.Asset)
			return
		}
		if out.Payload == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeJSON(w, http.StatusOK, out.Payload)
	}
}

func writeReason(w http.ResponseWriter, status int, reason, fallback string) {
	if reason == "" {
		reason = fallback
	}
	writeJSON(w, status, map[string]string{"error": reason})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAsset(w http.ResponseWriter, asset *Asset) {
	if asset.ContentType != "" {
		w.Header().Set("Content-Type", asset.ContentType)
	}
	now := time.Now().UTC()
	w.Header().Set("Last-Modified", now.Format(http.TimeFormat))
	if asset.MaxAge > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", int(asset.MaxAge.Seconds())))
		w.Header().Set("Expires", now.Add(asset.MaxAge).Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(asset.Data)
}
