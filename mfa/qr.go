package mfa

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/pkg/errors"
	"github.com/pquerna/otp"
	autherrors "github.com/securenotes/auth-service/internal/errors"
)

// DefaultQRSize is the pixel width/height of generated QR images.
const DefaultQRSize = 256

// QRDataURI renders an otpauth URL as a base64 PNG data URI suitable
// for an <img> src. Renderer failure surfaces as ErrQRGeneration.
func QRDataURI(otpauthURL string, size int) (string, error) {
	if size <= 0 {
		size = DefaultQRSize
	}

	key, err := otp.NewKeyFromURL(otpauthURL)
	if err != nil {
		return "", errors.Wrap(autherrors.ErrQRGeneration, err.Error())
	}

	img, err := key.Image(size, size)
	if err != nil {
		return "", errors.Wrap(autherrors.ErrQRGeneration, err.Error())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(autherrors.ErrQRGeneration, err.Error())
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
