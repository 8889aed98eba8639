package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/qrcode"
	"github.com/google/uuid"
)

type qrCodeRepository struct {
	store *Store
}

func NewQRCodeRepository(store *Store) qrcode.QRCodeRepository {
	return &qrCodeRepository{store: store}
}

func (r *qrCodeRepository) Create(ctx context.Context, qr qrcode.QRCode) (qrcode.QRCode, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if qr.ID == "" {
		qr.ID = uuid.NewString()
	}
	qr.CreatedAt, qr.UpdatedAt = now, now
	s.qrCodes[qr.ID] = qr
	return qr, nil
}

func (r *qrCodeRepository) GetByID(ctx context.Context, id string) (qrcode.QRCode, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	qr, ok := s.qrCodes[id]
	if !ok {
		return qrcode.QRCode{}, qrcode.ErrQRCodeNotFound
	}
	return qr, nil
}
