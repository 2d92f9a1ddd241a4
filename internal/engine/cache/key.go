package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rshade/qrbatch/internal/render"
	"github.com/rshade/qrbatch/internal/style"
)

// keyParams is the normalized form of a render request that is hashed.
type keyParams struct {
	Data    string       `json:"data"`
	Style   style.Config `json:"style"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	LogoSum string       `json:"logo_sum,omitempty"`
}

// GenerateKey returns a deterministic key for req. Requests that differ only
// in how defaults are spelled (zero size vs. the style size, "jpg" vs "jpeg")
// produce the same key.
func GenerateKey(req render.Request) (string, error) {
	st := req.Style.WithDefaults()
	if f, err := style.ParseFormat(string(st.Format)); err == nil {
		st.Format = f
	}
	st.Color = strings.ToLower(st.Color)
	st.Background = strings.ToLower(st.Background)

	p := keyParams{
		Data:   req.Data,
		Style:  st,
		Width:  req.Width,
		Height: req.Height,
	}
	if p.Width == 0 {
		p.Width = st.Width
	}
	if p.Height == 0 {
		p.Height = st.Height
	}
	if len(st.Logo) > 0 {
		sum := sha256.Sum256(st.Logo)
		p.LogoSum = hex.EncodeToString(sum[:])
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshalling cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
