// Package imageurl builds display URLs for images kept on the external
// image host.
//
// The host serves on-the-fly transforms (quality, format, crop, ...) that
// are selected by a comma-separated segment inserted into the URL path
// immediately after the "upload" segment. Transform only rewrites URLs it
// recognizes as belonging to the host; everything else - including
// anything that fails to parse - is returned unmodified, since callers
// may hold URLs from arbitrary origins.
package imageurl

import (
	"fmt"
	"net/url"
	"strings"
)

// Hosts recognized as the image CDN.
const hostSuffix = "cloudinary.com"

// Options selects display transforms. Zero values fall back to automatic
// quality and format; other fields are omitted when empty.
type Options struct {
	Quality     string // "auto" (default) or a numeric quality like "80"
	Format      string // "auto" (default), "jpg", "png", "webp", "heic"
	Progressive bool
	Crop        string // "fill", "fit", "scale", "thumb", "crop"
	Gravity     string // "auto", "center", "face", ...
	Width       int
	Height      int
	DPR         string // "auto" or a multiplier like "2"
}

// Transform inserts a transform segment into a recognized image-host URL.
// Unrecognized or unparseable URLs are returned unchanged.
func Transform(raw string, opts Options) string {
	if raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if !strings.HasSuffix(u.Hostname(), hostSuffix) {
		return raw
	}

	parts := strings.Split(u.Path, "/")
	uploadIdx := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx == -1 {
		return raw
	}

	quality := opts.Quality
	if quality == "" {
		quality = "auto"
	}
	format := opts.Format
	if format == "" {
		format = "auto"
	}

	tx := []string{"q_" + quality, "f_" + format}
	if opts.Progressive {
		tx = append(tx, "fl_progressive")
	}
	if opts.Crop != "" {
		tx = append(tx, "c_"+opts.Crop)
	}
	if opts.Gravity != "" {
		tx = append(tx, "g_"+opts.Gravity)
	}
	if opts.Width > 0 {
		tx = append(tx, fmt.Sprintf("w_%d", opts.Width))
	}
	if opts.Height > 0 {
		tx = append(tx, fmt.Sprintf("h_%d", opts.Height))
	}
	if opts.DPR != "" {
		tx = append(tx, "dpr_"+opts.DPR)
	}

	rebuilt := append([]string{}, parts[:uploadIdx+1]...)
	rebuilt = append(rebuilt, strings.Join(tx, ","))
	rebuilt = append(rebuilt, parts[uploadIdx+1:]...)
	u.Path = strings.Join(rebuilt, "/")
	return u.String()
}

// DisplayDefaults are the transforms applied to freshly uploaded selfies.
func DisplayDefaults() Options {
	return Options{
		Quality:     "auto",
		Format:      "auto",
		Progressive: true,
		Crop:        "fill",
		Gravity:     "auto",
		Width:       1080,
		DPR:         "auto",
	}
}
