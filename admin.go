package facturio

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const adminAPIPath = "/api/admin"

// ListUsers retrieves all registered users. Admin only.
func (c *Client) ListUsers(ctx context.Context, page, limit int) (*UserList, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var result UserList
	if err := c.do(ctx, http.MethodGet, adminAPIPath+"/users", query, nil, &result); err != nil {
		return nil, wrapError(err, "ListUsers")
	}

	return &result, nil
}

// UpdateUser changes a user's role or active flag. Admin only.
func (c *Client) UpdateUser(ctx context.Context, id string, update UserUpdate) error {
	if id == "" {
		return &Error{Kind: KindValidation, Op: "UpdateUser", Message: "a user id is required"}
	}
	if update.Role == nil && update.IsActive == nil {
		return &Error{Kind: KindValidation, Op: "UpdateUser", Message: "no fields to update"}
	}

	path := adminAPIPath + "/users/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, nil, update, nil); err != nil {
		return wrapError(err, "UpdateUser")
	}

	return nil
}

// ListAllInvoices retrieves invoices across all users, optionally filtered by
// owner, status or upload date range. Admin only.
func (c *Client) ListAllInvoices(ctx context.Context, filters AdminInvoiceFilters) (*InvoiceList, error) {
	if filters.Status != "" && !ValidStatus(filters.Status) {
		return nil, &Error{
			Kind:    KindValidation,
			Op:      "ListAllInvoices",
			Message: "status must be processing, processed or failed",
		}
	}

	query := url.Values{}
	if filters.UserID != "" {
		query.Set("user_id", filters.UserID)
	}
	if filters.Status != "" {
		query.Set("status", filters.Status)
	}
	if filters.StartDate != "" {
		query.Set("start_date", filters.StartDate)
	}
	if filters.EndDate != "" {
		query.Set("end_date", filters.EndDate)
	}
	if filters.Page > 0 {
		query.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.Limit > 0 {
		query.Set("limit", strconv.Itoa(filters.Limit))
	}

	var result InvoiceList
	if err := c.do(ctx, http.MethodGet, adminAPIPath+"/invoices", query, nil, &result); err != nil {
		return nil, wrapError(err, "ListAllInvoices")
	}

	return &result, nil
}

// GetStatistics retrieves the platform-wide aggregate snapshot. Admin only.
// The snapshot is complete or absent; there is no partial form.
func (c *Client) GetStatistics(ctx context.Context) (*Statistics, error) {
	var result Statistics
	if err := c.do(ctx, http.MethodGet, adminAPIPath+"/statistics", nil, nil, &result); err != nil {
		return nil, wrapError(err, "GetStatistics")
	}

	return &result, nil
}
