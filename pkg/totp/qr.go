package totp

import (
	"errors"

	"github.com/dmitrymomot/guardkit/pkg/qrcode"
)

// RenderQRCode rasterizes a provisioning URI as a PNG data URL.
func RenderQRCode(uri string) (string, error) {
	img, err := qrcode.DataURL(uri)
	if err != nil {
		return "", errors.Join(ErrFailedToRenderQRCode, err)
	}
	return img, nil
}
