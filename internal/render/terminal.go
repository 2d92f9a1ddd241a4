package render

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/rshade/qrbatch/internal/style"
)

// Terminal renders data as a block-character QR code suitable for a
// terminal. Small uses half-height blocks.
func Terminal(data string, ec style.ErrorCorrection, small bool) (string, error) {
	q, err := qrcode.New(data, recoveryLevel(ec))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	// Modern scanners read either polarity; keep dark-on-light.
	const inverse = false
	if small {
		return q.ToSmallString(inverse), nil
	}
	return q.ToString(inverse), nil
}
