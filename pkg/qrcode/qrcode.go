package qrcode

import (
	"encoding/base64"
	"errors"
	"image/color"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")
	ErrGenerate     = errors.New("qrcode: failed to generate QR code")
)

// DefaultSize is the image width and height in pixels.
const DefaultSize = 256

const dataURLPrefix = "data:image/png;base64,"

type options struct {
	size  int
	level skipqrcode.RecoveryLevel
}

// Option adjusts rendering.
type Option func(*options)

// WithSize sets the image size in pixels. Non-positive values are ignored.
func WithSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithHighRecovery switches to the highest error-correction level.
func WithHighRecovery() Option {
	return func(o *options) { o.level = skipqrcode.Highest }
}

// PNG encodes content as a PNG image.
func PNG(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	o := options{size: DefaultSize, level: skipqrcode.Medium}
	for _, opt := range opts {
		opt(&o)
	}

	q, err := skipqrcode.New(content, o.level)
	if err != nil {
		return nil, errors.Join(ErrGenerate, err)
	}
	q.ForegroundColor = color.Black
	q.BackgroundColor = color.White

	png, err := q.PNG(o.size)
	if err != nil {
		return nil, errors.Join(ErrGenerate, err)
	}
	return png, nil
}

// DataURL encodes content as a base64 PNG data URL.
func DataURL(content string, opts ...Option) (string, error) {
	png, err := PNG(content, opts...)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
