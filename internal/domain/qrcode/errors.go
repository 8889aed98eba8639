package qrcode

import "errors"

var ErrQRCodeNotFound = errors.New("QR Code not found")
