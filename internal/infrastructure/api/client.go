package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/storein/mobile-core/internal/application/fulfillment"
	"github.com/storein/mobile-core/internal/domain/shared"
	"github.com/storein/mobile-core/internal/domain/voucher"
)

const (
	voucherBasePath = "/api/storage-vouchers"
	mobileBasePath  = "/api/mobile/storage-vouchers"

	storageDateFormat = "2006-01-02"
)

// StorageVoucherClient implements fulfillment.BackendClient over the backend's
// storage-voucher REST surface. Outbound payloads are validated before any
// network I/O so malformed items fail locally with a clear message.
type StorageVoucherClient struct {
	transport *Transport
	validate  *validator.Validate
}

// NewStorageVoucherClient creates a client over the given transport.
func NewStorageVoucherClient(transport *Transport) *StorageVoucherClient {
	return &StorageVoucherClient{
		transport: transport,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

var _ fulfillment.BackendClient = (*StorageVoucherClient)(nil)

// ListVouchers fetches one page of voucher summaries.
func (c *StorageVoucherClient) ListVouchers(ctx context.Context, query fulfillment.ListQuery) (fulfillment.VoucherPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("pageSize", strconv.Itoa(query.PageSize))
	if query.Code != "" {
		params.Set("code", query.Code)
	}
	if query.Status != "" {
		params.Set("status", query.Status.String())
	}
	if query.Priority != 0 {
		params.Set("priorityList", strconv.Itoa(int(query.Priority)))
	}
	if query.AssignedTo != uuid.Nil {
		params.Set("assignedTo", query.AssignedTo.String())
	}
	if query.StorageDateStart != nil {
		params.Set("storageDateStart", query.StorageDateStart.Format(storageDateFormat))
	}
	if query.StorageDateEnd != nil {
		params.Set("storageDateEnd", query.StorageDateEnd.Format(storageDateFormat))
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}

	var envelope listEnvelope
	if err := c.transport.Get(ctx, mobileBasePath, params, &envelope); err != nil {
		return fulfillment.VoucherPage{}, err
	}

	page := fulfillment.VoucherPage{
		Results: make([]voucher.Summary, 0, len(envelope.Data)),
		Count:   envelope.Count,
	}
	for _, payload := range envelope.Data {
		summary, err := payload.toDomain()
		if err != nil {
			return fulfillment.VoucherPage{}, fmt.Errorf("%w: %v", shared.ErrRequestFailed, err)
		}
		page.Results = append(page.Results, summary)
	}
	return page, nil
}

// GetVoucher loads the full voucher aggregate.
func (c *StorageVoucherClient) GetVoucher(ctx context.Context, id uuid.UUID) (*voucher.StorageVoucher, error) {
	var payload voucherPayload
	if err := c.transport.Get(ctx, mobileBasePath+"/"+id.String(), nil, &payload); err != nil {
		return nil, err
	}
	if payload.ID == "" {
		return nil, shared.ErrNotFound
	}
	return payload.toDomain()
}

// UpdateVoucherStatus requests a status transition.
func (c *StorageVoucherClient) UpdateVoucherStatus(ctx context.Context, id uuid.UUID, status voucher.Status) (*voucher.StorageVoucher, error) {
	if !status.IsValid() {
		return nil, shared.ErrInvalidInput
	}
	var payload voucherPayload
	path := voucherBasePath + "/" + id.String() + "/status"
	if err := c.transport.Patch(ctx, path, statusUpdateRequest{Status: status.String()}, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain()
}

// UpsertItem creates or updates a single storage voucher item. The request is
// keyed by the item id when present; the backend treats its absence as a
// create. Safe to repeat: the same request never duplicates a record.
func (c *StorageVoucherClient) UpsertItem(ctx context.Context, item voucher.Item) (voucher.Item, error) {
	req := upsertRequestFromItem(item)
	if err := c.validate.Struct(req); err != nil {
		return voucher.Item{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	var envelope itemEnvelope
	if err := c.transport.Post(ctx, voucherBasePath+"/create-or-update-item", req, &envelope); err != nil {
		return voucher.Item{}, err
	}
	return envelope.Data.toDomain()
}

// ProcessVoucher requests the processing transition toward completion.
// The backend must answer with the updated aggregate; an empty response means
// the process contract is not implemented on the server side yet.
func (c *StorageVoucherClient) ProcessVoucher(ctx context.Context, id uuid.UUID) (*voucher.StorageVoucher, error) {
	var payload voucherPayload
	path := voucherBasePath + "/" + id.String() + "/process"
	if err := c.transport.Post(ctx, path, struct{}{}, &payload); err != nil {
		return nil, err
	}
	if payload.ID == "" {
		return nil, shared.ErrProcessUnsupported
	}
	return payload.toDomain()
}

// SendProcessCompletedEmail triggers the completion notification email.
func (c *StorageVoucherClient) SendProcessCompletedEmail(ctx context.Context, id uuid.UUID) (fulfillment.NotificationResult, error) {
	var resp emailResponse
	path := mobileBasePath + "/send-email-process-completed/" + id.String()
	if err := c.transport.Get(ctx, path, nil, &resp); err != nil {
		return fulfillment.NotificationResult{}, err
	}
	return fulfillment.NotificationResult{
		StatusCode: resp.StatusCode,
		Message:    resp.Message,
	}, nil
}
