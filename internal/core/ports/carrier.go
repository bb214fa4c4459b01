package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
)

// PacketRequest is the carrier-facing shipment request. Number is derived
// from the order id so retries present the same packet number to the carrier.
type PacketRequest struct {
	Number    string
	Name      string
	Surname   string
	Email     string
	Phone     string
	AddressID int64 // pickup point id, already coerced to the carrier's numeric type
	COD       decimal.Decimal
	Value     decimal.Decimal
	Currency  string
	WeightKG  float64
}

// PacketResult carries the identifiers the carrier issued for a packet.
type PacketResult struct {
	PacketID string
	Barcode  string
}

// Carrier abstracts the parcel-locker shipping provider.
type Carrier interface {
	CreatePacket(ctx context.Context, req PacketRequest) (*PacketResult, error)

	// PacketBarcode fetches the public tracking barcode for a previously
	// created packet.
	PacketBarcode(ctx context.Context, packetID string) (string, error)

	// PickupPoints returns the carrier's pickup point directory.
	PickupPoints(ctx context.Context) ([]entity.PickupPoint, error)
}
