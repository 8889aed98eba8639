package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type qrCodeRepository struct {
	db *database.DB
}

func NewQRCodeRepository(db *database.DB) qrcode.QRCodeRepository {
	return &qrCodeRepository{db: db}
}

// Create implements qrcode.QRCodeRepository.
func (r *qrCodeRepository) Create(ctx context.Context, qr qrcode.QRCode) (qrcode.QRCode, error) {
	q := GetQuerier(ctx, r.db)

	ranges, err := json.Marshal(qr.AllowedNetworkRanges)
	if err != nil {
		return qrcode.QRCode{}, fmt.Errorf("failed to encode network ranges: %w", err)
	}

	query := `
		INSERT INTO qr_codes (location, work_start_time, work_end_time, allowed_network_ranges)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query, qr.Location, qr.WorkStartTime, qr.WorkEndTime, ranges).
		Scan(&qr.ID, &qr.CreatedAt, &qr.UpdatedAt)
	if err != nil {
		return qrcode.QRCode{}, fmt.Errorf("failed to create qr code: %w", err)
	}
	return qr, nil
}

// GetByID implements qrcode.QRCodeRepository.
func (r *qrCodeRepository) GetByID(ctx context.Context, id string) (qrcode.QRCode, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, location, work_start_time, work_end_time, allowed_network_ranges, created_at, updated_at
		FROM qr_codes
		WHERE id = $1
	`

	var (
		qr     qrcode.QRCode
		ranges []byte
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&qr.ID, &qr.Location, &qr.WorkStartTime, &qr.WorkEndTime, &ranges, &qr.CreatedAt, &qr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return qrcode.QRCode{}, qrcode.ErrQRCodeNotFound
		}
		return qrcode.QRCode{}, fmt.Errorf("failed to get qr code: %w", err)
	}

	if len(ranges) > 0 {
		if err := json.Unmarshal(ranges, &qr.AllowedNetworkRanges); err != nil {
			return qrcode.QRCode{}, fmt.Errorf("failed to decode network ranges: %w", err)
		}
	}
	return qr, nil
}
