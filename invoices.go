package facturio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const invoicesAPIPath = "/api/invoices"

// sortFields maps the public sort keys to the backend field names.
var sortFields = map[string]string{
	SortByDate:   "uploadedAt",
	SortByAmount: "totalAmount",
	SortByVendor: "vendorName",
}

// Upload sends a PDF to the platform. The returned ack carries the new
// invoice id and its initial status; extraction happens asynchronously.
func (c *Client) Upload(ctx context.Context, fileName string, r io.Reader) (*UploadAck, error) {
	if fileName == "" || r == nil {
		return nil, &Error{
			Kind:    KindValidation,
			Op:      "Upload",
			Message: "a file name and file content are required",
		}
	}

	req, err := c.newRequest(ctx)
	if err != nil {
		return nil, wrapError(err, "Upload")
	}
	req.SetFileReader("file", fileName, r)

	resp, err := req.Execute(http.MethodPost, c.baseURL+invoicesAPIPath+"/upload")
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: "Upload", Message: err.Error()}
	}

	var ack UploadAck
	if err := c.decode(resp, &ack); err != nil {
		return nil, wrapError(err, "Upload")
	}
	if ack.InvoiceID == "" {
		return nil, &Error{
			Kind:    KindProtocol,
			Op:      "Upload",
			Status:  resp.StatusCode(),
			Message: "upload response is missing the invoice id",
		}
	}

	return &ack, nil
}

// ListInvoices retrieves the caller's invoices with optional sorting and
// pagination.
func (c *Client) ListInvoices(ctx context.Context, opts *ListOptions) (*InvoiceList, error) {
	query := url.Values{}
	if opts != nil {
		if opts.SortBy != "" {
			field, ok := sortFields[opts.SortBy]
			if !ok {
				return nil, &Error{
					Kind:    KindValidation,
					Op:      "ListInvoices",
					Message: fmt.Sprintf("unknown sort key %q", opts.SortBy),
				}
			}
			query.Set("sort_by", field)
		}
		if opts.Order != "" {
			if opts.Order != OrderAsc && opts.Order != OrderDesc {
				return nil, &Error{
					Kind:    KindValidation,
					Op:      "ListInvoices",
					Message: fmt.Sprintf("unknown sort order %q", opts.Order),
				}
			}
			query.Set("order", opts.Order)
		}
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
	}

	var result InvoiceList
	if err := c.do(ctx, http.MethodGet, invoicesAPIPath, query, nil, &result); err != nil {
		return nil, wrapError(err, "ListInvoices")
	}

	return &result, nil
}

// GetInvoice retrieves a single invoice by id.
func (c *Client) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	if id == "" {
		return nil, &Error{Kind: KindValidation, Op: "GetInvoice", Message: "an invoice id is required"}
	}

	var result Invoice
	path := invoicesAPIPath + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &result); err != nil {
		return nil, wrapError(err, "GetInvoice")
	}

	return &result, nil
}

// GetDownloadURL retrieves a short-lived signed URL for the stored PDF.
func (c *Client) GetDownloadURL(ctx context.Context, id string) (*DownloadURL, error) {
	if id == "" {
		return nil, &Error{Kind: KindValidation, Op: "GetDownloadURL", Message: "an invoice id is required"}
	}

	var result DownloadURL
	path := invoicesAPIPath + "/" + url.PathEscape(id) + "/download"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &result); err != nil {
		return nil, wrapError(err, "GetDownloadURL")
	}
	if result.URL == "" {
		return nil, &Error{
			Kind:    KindProtocol,
			Op:      "GetDownloadURL",
			Message: "download response is missing the signed URL",
		}
	}

	return &result, nil
}

// SubmitFeedback records a vote on one extracted field and returns the full
// updated invoice. The server's copy of the feedback map is authoritative;
// callers replace their local state with the echo rather than guessing.
func (c *Client) SubmitFeedback(ctx context.Context, id, fieldName, vote string) (*Invoice, error) {
	if id == "" || fieldName == "" {
		return nil, &Error{
			Kind:    KindValidation,
			Op:      "SubmitFeedback",
			Message: "an invoice id and field name are required",
		}
	}
	if !ValidVote(vote) {
		return nil, &Error{
			Kind:    KindValidation,
			Op:      "SubmitFeedback",
			Message: fmt.Sprintf("unknown vote %q", vote),
		}
	}

	body := struct {
		FieldName string `json:"fieldName"`
		Vote      string `json:"vote"`
	}{FieldName: fieldName, Vote: vote}

	var result Invoice
	path := invoicesAPIPath + "/" + url.PathEscape(id) + "/feedback"
	if err := c.do(ctx, http.MethodPut, path, nil, body, &result); err != nil {
		return nil, wrapError(err, "SubmitFeedback")
	}

	return &result, nil
}
