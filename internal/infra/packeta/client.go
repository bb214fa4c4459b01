// Package packeta implements the parcel-locker carrier client over the
// carrier's XML protocol.
package packeta

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quanb-duy/custom-ecommerce-website/internal/core/domain/entity"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
)

var _ ports.Carrier = (*Client)(nil)

type Client struct {
	apiURL      string
	apiPassword string
	feedURL     string
	eshop       string
	http        *http.Client
}

func NewClient(apiURL, apiPassword, feedURL, eshop string) *Client {
	return &Client{
		apiURL:      apiURL,
		apiPassword: apiPassword,
		feedURL:     feedURL,
		eshop:       eshop,
		http:        &http.Client{Timeout: 20 * time.Second},
	}
}

const statusFault = "fault"

type createPacketRequest struct {
	XMLName     xml.Name         `xml:"createPacket"`
	APIPassword string           `xml:"apiPassword"`
	Attributes  packetAttributes `xml:"packetAttributes"`
}

type packetAttributes struct {
	Number    string `xml:"number"`
	Name      string `xml:"name"`
	Surname   string `xml:"surname"`
	Email     string `xml:"email"`
	Phone     string `xml:"phone"`
	AddressID int64  `xml:"addressId"`
	COD       string `xml:"cod"`
	Value     string `xml:"value"`
	Currency  string `xml:"currency"`
	Weight    string `xml:"weight"`
	Eshop     string `xml:"eshop"`
}

type packetBarcodeRequest struct {
	XMLName     xml.Name `xml:"packetBarcode"`
	APIPassword string   `xml:"apiPassword"`
	PacketID    string   `xml:"packetId"`
}

type apiResponse struct {
	XMLName xml.Name `xml:"response"`
	Status  string   `xml:"status"`
	Result  struct {
		ID      string `xml:"id"`
		Barcode string `xml:"barcode"`
	} `xml:"result"`
	Fault struct {
		Message string `xml:"message"`
	} `xml:"fault"`
}

// CreatePacket submits a shipment and returns the carrier-issued
// identifiers. The response status field is inspected before any returned
// identifier is trusted.
func (c *Client) CreatePacket(ctx context.Context, req ports.PacketRequest) (*ports.PacketResult, error) {
	body := createPacketRequest{
		APIPassword: c.apiPassword,
		Attributes: packetAttributes{
			Number:    req.Number,
			Name:      req.Name,
			Surname:   req.Surname,
			Email:     req.Email,
			Phone:     req.Phone,
			AddressID: req.AddressID,
			COD:       req.COD.StringFixed(2),
			Value:     req.Value.StringFixed(2),
			Currency:  req.Currency,
			Weight:    fmt.Sprintf("%.1f", req.WeightKG),
			Eshop:     c.eshop,
		},
	}

	resp, err := c.call(ctx, body)
	if err != nil {
		return nil, err
	}
	if resp.Result.ID == "" && resp.Result.Barcode == "" {
		return nil, fmt.Errorf("packeta: createPacket returned no packet identifiers")
	}
	return &ports.PacketResult{
		PacketID: resp.Result.ID,
		Barcode:  resp.Result.Barcode,
	}, nil
}

// PacketBarcode fetches the public tracking barcode for an existing packet.
func (c *Client) PacketBarcode(ctx context.Context, packetID string) (string, error) {
	resp, err := c.call(ctx, packetBarcodeRequest{
		APIPassword: c.apiPassword,
		PacketID:    packetID,
	})
	if err != nil {
		return "", err
	}
	if resp.Result.Barcode == "" {
		return "", fmt.Errorf("packeta: no barcode for packet %s", packetID)
	}
	return resp.Result.Barcode, nil
}

// PickupPoints downloads the carrier's branch feed.
func (c *Client) PickupPoints(ctx context.Context) ([]entity.PickupPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("packeta: build feed request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("packeta: fetch pickup point feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("packeta: pickup point feed returned %s", resp.Status)
	}

	var feed struct {
		Branches []entity.PickupPoint `json:"branches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("packeta: decode pickup point feed: %w", err)
	}
	return feed.Branches, nil
}

func (c *Client) call(ctx context.Context, body any) (*apiResponse, error) {
	payload, err := xml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("packeta: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL,
		bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return nil, fmt.Errorf("packeta: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("packeta: call api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("packeta: read response: %w", err)
	}

	var parsed apiResponse
	if err := xml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("packeta: decode response: %w", err)
	}

	if parsed.Status == statusFault {
		msg := parsed.Fault.Message
		if msg == "" {
			msg = "unspecified fault"
		}
		return nil, fmt.Errorf("packeta: api fault: %s", msg)
	}
	return &parsed, nil
}
