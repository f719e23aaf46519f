package gateway

import (
	"path"
	"strings"
	"time"
)

// sanitizeName strips every ".." substring from a client-supplied file
// name before it is joined with a fixed base, so a traversal attempt
// degrades into a lookup inside the base directory.
func sanitizeName(name string) string {
	return strings.ReplaceAll(name, "..", "")
}

// siteAsset resolves a file below the site root through the backend's
// SiteFile handler. Unwired handler and missing file are reported
// identically as not-found.
func (g *Gateway) siteAsset(subdir, name, contentType string, maxAge time.Duration) Outcome {
	handler := g.port.Snapshot().SiteFile
	if handler == nil {
		return notFound()
	}
	data := handler(path.Join(subdir, sanitizeName(name)))
	if data == nil {
		return notFound()
	}
	return okAsset(contentType, maxAge, data)
}

// Index serves the companion site's entry page.
func (g *Gateway) Index() Outcome {
	handler := g.port.Snapshot().SiteFile
	if handler == nil {
		return notFound()
	}
	data := handler("index.html")
	if data == nil {
		return notFound()
	}
	return okAsset("text/html", 0, data)
}

// GetJsFile serves a script with the short cache horizon.
func (g *Gateway) GetJsFile(filename string) Outcome {
	return g.siteAsset("js", filename, "text/javascript", shortAssetMaxAge)
}

// GetCssFile serves a stylesheet with the short cache horizon.
func (g *Gateway) GetCssFile(filename string) Outcome {
	return g.siteAsset("css", filename, "text/css", shortAssetMaxAge)
}

// GetCssImageFile serves a stylesheet image with the long cache horizon.
func (g *Gateway) GetCssImageFile(filename string) Outcome {
	return g.siteAsset("css/images", filename, "image/png", longAssetMaxAge)
}

// GetImgFile serves a site image with the long cache horizon.
func (g *Gateway) GetImgFile(filename string) Outcome {
	return g.siteAsset("img", filename, "image/png", longAssetMaxAge)
}

// GetLocaleFile serves a locale bundle with the short cache horizon.
func (g *Gateway) GetLocaleFile(filename string) Outcome {
	return g.siteAsset("locales", filename, "text/javascript", shortAssetMaxAge)
}

// GetDelayedImage returns an image registered earlier for deferred
// retrieval.
func (g *Gateway) GetDelayedImage(imageID string) Outcome {
	handler := g.port.Snapshot().DelayedImage
	if handler == nil {
		return notFound()
	}
	return ok(handler(imageID))
}
