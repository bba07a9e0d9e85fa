package cache

import facturio "github.com/facturio/facturio-go"

// reconcile applies a feedback echo to both cache slots. It is pure: inputs
// are not mutated, and the same echo produces the same result regardless of
// which slots held the id beforehand. Slots that do not hold the id are
// returned as-is.
func reconcile(list []facturio.Invoice, current *facturio.Invoice, echo facturio.Invoice) ([]facturio.Invoice, *facturio.Invoice) {
	out := cloneList(list)
	for i := range out {
		if out[i].ID == echo.ID {
			out[i] = mergeEcho(out[i], echo)
			break
		}
	}

	if current != nil && current.ID == echo.ID {
		merged := mergeEcho(*current, echo)
		current = &merged
	}

	return out, current
}

// mergeEcho overlays the server's echoed invoice on a local copy: a shallow
// union where echoed values win and locally-known optional values survive
// when the echo omits them. The one exception is the feedback map, which the
// echo replaces wholesale: the server's map is authoritative and complete,
// and a per-key merge would resurrect feedback another session removed.
func mergeEcho(local, echo facturio.Invoice) facturio.Invoice {
	out := echo

	if out.UserID == "" {
		out.UserID = local.UserID
	}
	if out.FileName == "" {
		out.FileName = local.FileName
	}
	if out.StorageURL == "" {
		out.StorageURL = local.StorageURL
	}
	if out.Status == "" {
		out.Status = local.Status
	}
	if out.InvoiceNumber == "" {
		out.InvoiceNumber = local.InvoiceNumber
	}
	if out.InvoiceDate == "" {
		out.InvoiceDate = local.InvoiceDate
	}
	if out.DueDate == "" {
		out.DueDate = local.DueDate
	}
	if out.VendorName == "" {
		out.VendorName = local.VendorName
	}
	if out.SupplierName == "" {
		out.SupplierName = local.SupplierName
	}
	if out.SupplierRUC == "" {
		out.SupplierRUC = local.SupplierRUC
	}
	if out.TotalAmount == 0 {
		out.TotalAmount = local.TotalAmount
	}
	if out.TaxAmount == 0 {
		out.TaxAmount = local.TaxAmount
	}
	if out.Subtotal == 0 {
		out.Subtotal = local.Subtotal
	}
	if out.Currency == "" {
		out.Currency = local.Currency
	}
	if out.LineItems == nil {
		out.LineItems = local.LineItems
	}
	if out.OCREngine == "" {
		out.OCREngine = local.OCREngine
	}
	if out.OCRConfidence == 0 {
		out.OCRConfidence = local.OCRConfidence
	}
	if out.UploadedAt.IsZero() {
		out.UploadedAt = local.UploadedAt
	}
	if out.ProcessedAt == nil {
		out.ProcessedAt = local.ProcessedAt
	}
	if out.ErrorMessage == "" {
		out.ErrorMessage = local.ErrorMessage
	}

	out.FieldFeedback = cloneFeedback(echo.FieldFeedback)
	out.LineItems = cloneItems(out.LineItems)
	return out
}

// cloneInvoice copies an invoice deeply enough that callers cannot alias
// cache-owned maps or slices. Returns nil for nil.
func cloneInvoice(inv *facturio.Invoice) *facturio.Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	out.FieldFeedback = cloneFeedback(inv.FieldFeedback)
	out.LineItems = cloneItems(inv.LineItems)
	if inv.ProcessedAt != nil {
		t := *inv.ProcessedAt
		out.ProcessedAt = &t
	}
	return &out
}

func cloneList(list []facturio.Invoice) []facturio.Invoice {
	out := make([]facturio.Invoice, len(list))
	copy(out, list)
	return out
}

func cloneFeedback(m map[string]facturio.FieldFeedback) map[string]facturio.FieldFeedback {
	if m == nil {
		return nil
	}
	out := make(map[string]facturio.FieldFeedback, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneItems(items []facturio.LineItem) []facturio.LineItem {
	if items == nil {
		return nil
	}
	out := make([]facturio.LineItem, len(items))
	copy(out, items)
	return out
}
