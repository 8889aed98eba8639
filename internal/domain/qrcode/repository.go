package qrcode

import "context"

// QRCodeRepository is read-mostly; Create exists for seeding and tests.
type QRCodeRepository interface {
	Create(ctx context.Context, qr QRCode) (QRCode, error)

	// GetByID returns ErrQRCodeNotFound when no QR code matches.
	GetByID(ctx context.Context, id string) (QRCode, error)
}
