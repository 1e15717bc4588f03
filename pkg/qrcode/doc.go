// Package qrcode renders short strings, typically otpauth:// provisioning
// URIs, as PNG QR codes returned either as bytes or as a data URL ready for
// an <img> tag.
//
// It wraps github.com/skip2/go-qrcode with fixed defaults: 256px, medium
// recovery level, black modules on a white background with the standard
// quiet zone. Options override size and recovery level.
package qrcode
