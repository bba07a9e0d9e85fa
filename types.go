package facturio

import "time"

// Invoice status values reported by the extraction pipeline. An invoice is
// created in StatusProcessing and moves exactly once to StatusProcessed or
// StatusFailed; the client never changes status itself, it only reflects what
// the server reports on the next fetch.
const (
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Vote values accepted by SubmitFeedback. VoteRemove deletes any recorded
// feedback for the field; "vote again to undo" and "switch vote" are both
// expressed by the caller, never inferred.
const (
	VoteUp     = "upvote"
	VoteDown   = "downvote"
	VoteRemove = "remove"
)

// Invoice represents one uploaded document and its extracted data.
// Extracted fields stay empty until the pipeline finishes.
type Invoice struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	FileName   string `json:"fileName"`
	StorageURL string `json:"storageUrl"`
	Status     string `json:"status"`

	InvoiceNumber string     `json:"invoiceNumber,omitempty"`
	InvoiceDate   string     `json:"invoiceDate,omitempty"`
	DueDate       string     `json:"dueDate,omitempty"`
	VendorName    string     `json:"vendorName,omitempty"`
	SupplierName  string     `json:"supplierName,omitempty"`
	SupplierRUC   string     `json:"supplierRuc,omitempty"`
	TotalAmount   float64    `json:"totalAmount,omitempty"`
	TaxAmount     float64    `json:"taxAmount,omitempty"`
	Subtotal      float64    `json:"subtotal,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	LineItems     []LineItem `json:"lineItems,omitempty"`
	OCREngine     string     `json:"ocrEngine,omitempty"`
	OCRConfidence float64    `json:"ocrConfidence,omitempty"`

	// FieldFeedback maps extracted-field names to the latest recorded vote.
	// A missing key means no feedback has been recorded for that field.
	FieldFeedback map[string]FieldFeedback `json:"fieldFeedback,omitempty"`

	UploadedAt   time.Time  `json:"uploadedAt"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// Terminal reports whether the invoice has left the processing state.
func (inv *Invoice) Terminal() bool {
	return inv.Status == StatusProcessed || inv.Status == StatusFailed
}

// HasExtractedField reports whether name is a known extracted field that
// carries a value on this invoice. Feedback only makes sense for such fields.
// Amount fields always count as present: zero is a legitimate extraction
// result (a zero-tax invoice, for one), and the server owns the real check.
func (inv *Invoice) HasExtractedField(name string) bool {
	switch name {
	case "invoiceNumber":
		return inv.InvoiceNumber != ""
	case "invoiceDate":
		return inv.InvoiceDate != ""
	case "dueDate":
		return inv.DueDate != ""
	case "vendorName":
		return inv.VendorName != ""
	case "supplierName":
		return inv.SupplierName != ""
	case "supplierRuc":
		return inv.SupplierRUC != ""
	case "totalAmount", "taxAmount", "subtotal":
		return true
	case "currency":
		return inv.Currency != ""
	case "lineItems":
		return len(inv.LineItems) > 0
	default:
		return false
	}
}

// ValidStatus reports whether s is one of the known invoice statuses.
func ValidStatus(s string) bool {
	return s == StatusProcessing || s == StatusProcessed || s == StatusFailed
}

// ValidVote reports whether v is accepted by the feedback endpoint.
func ValidVote(v string) bool {
	return v == VoteUp || v == VoteDown || v == VoteRemove
}

// LineItem is one row of an invoice. It has no identity of its own and only
// exists inside its parent invoice.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
}

// FieldFeedback records one user's verdict on a single extracted field.
type FieldFeedback struct {
	Vote      string    `json:"vote"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadAck is the server's acknowledgment of an upload. Extraction runs
// asynchronously, so the ack carries an id and initial status, not the
// processed invoice.
type UploadAck struct {
	InvoiceID string `json:"invoiceId"`
	FileName  string `json:"fileName"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// InvoiceList is a paginated list response.
type InvoiceList struct {
	Invoices []Invoice `json:"invoices"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// DownloadURL is a short-lived signed URL for the stored PDF.
type DownloadURL struct {
	URL       string    `json:"downloadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Statistics is a platform-wide aggregate snapshot. It has no identity and is
// always replaced wholesale, never merged field by field.
type Statistics struct {
	TotalUsers         int     `json:"totalUsers"`
	TotalInvoices      int     `json:"totalInvoices"`
	TotalAmount        float64 `json:"totalAmount"`
	SuccessRate        float64 `json:"successRate"`
	ActiveUsers        *int    `json:"activeUsers,omitempty"`
	ProcessingInvoices *int    `json:"processingInvoices,omitempty"`
	FailedInvoices     *int    `json:"failedInvoices,omitempty"`
}

// User is a registered account as seen by the admin surface. The identity
// field travels as "uid" on the wire.
type User struct {
	ID            string    `json:"uid"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Role          string    `json:"role"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserList is a paginated list of users.
type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// Sort keys accepted by ListInvoices.
const (
	SortByDate   = "date"
	SortByAmount = "amount"
	SortByVendor = "vendor"
)

// Sort directions accepted by ListInvoices.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListOptions configures list operations. The zero value asks for the
// server-side defaults (most recent first).
type ListOptions struct {
	SortBy string // SortByDate, SortByAmount or SortByVendor
	Order  string // OrderAsc or OrderDesc
	Page   int    // 1-indexed, 0 means default
	Limit  int    // results per page, 0 means default
}

// AdminInvoiceFilters narrows the admin all-invoices listing. Zero-valued
// fields are not sent.
type AdminInvoiceFilters struct {
	UserID    string
	Status    string
	StartDate string // ISO date, inclusive
	EndDate   string // ISO date, inclusive
	Page      int
	Limit     int
}

// UserUpdate carries the mutable user properties for the admin PATCH. Nil
// pointers leave the property untouched.
type UserUpdate struct {
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}
