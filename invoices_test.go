package facturio

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_ListInvoices(t *testing.T) {
	t.Run("maps sort keys to backend fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("sort_by") != "totalAmount" {
				t.Errorf("sort_by = %v, want totalAmount", q.Get("sort_by"))
			}
			if q.Get("order") != "asc" {
				t.Errorf("order = %v, want asc", q.Get("order"))
			}
			if q.Get("page") != "2" || q.Get("limit") != "25" {
				t.Errorf("page/limit = %v/%v, want 2/25", q.Get("page"), q.Get("limit"))
			}
			json.NewEncoder(w).Encode(InvoiceList{Total: 0, Invoices: []Invoice{}})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.ListInvoices(context.Background(), &ListOptions{
			SortBy: SortByAmount,
			Order:  OrderAsc,
			Page:   2,
			Limit:  25,
		})
		if err != nil {
			t.Fatalf("ListInvoices failed: %v", err)
		}
	})

	t.Run("nil options sends no query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.RawQuery != "" {
				t.Errorf("query = %v, want empty", r.URL.RawQuery)
			}
			if r.URL.Path != "/api/invoices" {
				t.Errorf("path = %v, want /api/invoices", r.URL.Path)
			}
			json.NewEncoder(w).Encode(InvoiceList{
				Total:    1,
				Invoices: []Invoice{{ID: "inv-1", Status: StatusProcessing}},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		list, err := c.ListInvoices(context.Background(), nil)
		if err != nil {
			t.Fatalf("ListInvoices failed: %v", err)
		}
		if list.Total != 1 || len(list.Invoices) != 1 {
			t.Errorf("list = %+v, want one invoice", list)
		}
	})

	t.Run("rejects unknown sort key locally", func(t *testing.T) {
		c := NewClient("http://localhost:0")
		_, err := c.ListInvoices(context.Background(), &ListOptions{SortBy: "priciest"})
		if !IsValidation(err) {
			t.Errorf("error = %v, want a validation error", err)
		}
	})
}

func TestClient_Upload(t *testing.T) {
	t.Run("sends multipart file", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %v, want POST", r.Method)
			}
			if r.URL.Path != "/api/invoices/upload" {
				t.Errorf("path = %v, want /api/invoices/upload", r.URL.Path)
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("no file part: %v", err)
			}
			defer file.Close()
			if header.Filename != "factura.pdf" {
				t.Errorf("filename = %v, want factura.pdf", header.Filename)
			}
			content, _ := io.ReadAll(file)
			if string(content) != "%PDF-1.4 fake" {
				t.Errorf("content = %q, want the uploaded bytes", content)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(UploadAck{
				InvoiceID: "inv-9",
				FileName:  "factura.pdf",
				Status:    StatusProcessing,
				Message:   "Invoice uploaded successfully and is being processed",
			})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		ack, err := c.Upload(context.Background(), "factura.pdf", strings.NewReader("%PDF-1.4 fake"))
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if ack.InvoiceID != "inv-9" || ack.Status != StatusProcessing {
			t.Errorf("ack = %+v, want inv-9 processing", ack)
		}
	})

	t.Run("missing file is rejected before the network", func(t *testing.T) {
		c := NewClient("http://localhost:0")
		if _, err := c.Upload(context.Background(), "", nil); !IsValidation(err) {
			t.Errorf("error = %v, want a validation error", err)
		}
	})

	t.Run("ack without id is a protocol error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"fileName": "factura.pdf", "status": "processing"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.Upload(context.Background(), "factura.pdf", strings.NewReader("x"))
		if KindOf(err) != KindProtocol {
			t.Errorf("kind = %v, want %v", KindOf(err), KindProtocol)
		}
	})
}

func TestClient_GetInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/invoices/inv-7" {
			t.Errorf("path = %v, want /api/invoices/inv-7", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Invoice{ID: "inv-7", Status: StatusProcessed})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	inv, err := c.GetInvoice(context.Background(), "inv-7")
	if err != nil {
		t.Fatalf("GetInvoice failed: %v", err)
	}
	if inv.ID != "inv-7" {
		t.Errorf("ID = %v, want inv-7", inv.ID)
	}

	if _, err := c.GetInvoice(context.Background(), ""); !IsValidation(err) {
		t.Errorf("empty id error = %v, want a validation error", err)
	}
}

func TestClient_GetDownloadURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/invoices/inv-7/download" {
				t.Errorf("path = %v, want /api/invoices/inv-7/download", r.URL.Path)
			}
			w.Write([]byte(`{"downloadUrl": "https://signed.example/x", "expiresAt": "2024-06-01T12:00:00Z"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		u, err := c.GetDownloadURL(context.Background(), "inv-7")
		if err != nil {
			t.Fatalf("GetDownloadURL failed: %v", err)
		}
		if u.URL != "https://signed.example/x" {
			t.Errorf("URL = %v, want the signed URL", u.URL)
		}
	})

	t.Run("missing url is a protocol error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.GetDownloadURL(context.Background(), "inv-7")
		if KindOf(err) != KindProtocol {
			t.Errorf("kind = %v, want %v", KindOf(err), KindProtocol)
		}
	})
}

func TestClient_SubmitFeedback(t *testing.T) {
	t.Run("sends the vote and returns the echo", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("method = %v, want PUT", r.Method)
			}
			if r.URL.Path != "/api/invoices/inv-3/feedback" {
				t.Errorf("path = %v, want /api/invoices/inv-3/feedback", r.URL.Path)
			}
			var body struct {
				FieldName string `json:"fieldName"`
				Vote      string `json:"vote"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.FieldName != "totalAmount" || body.Vote != VoteDown {
				t.Errorf("body = %+v, want totalAmount downvote", body)
			}
			json.NewEncoder(w).Encode(Invoice{
				ID:     "inv-3",
				Status: StatusProcessed,
				FieldFeedback: map[string]FieldFeedback{
					"totalAmount": {Vote: VoteDown, UserID: "user-42"},
				},
			})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		inv, err := c.SubmitFeedback(context.Background(), "inv-3", "totalAmount", VoteDown)
		if err != nil {
			t.Fatalf("SubmitFeedback failed: %v", err)
		}
		if inv.FieldFeedback["totalAmount"].Vote != VoteDown {
			t.Errorf("feedback = %+v, want the echoed downvote", inv.FieldFeedback)
		}
	})

	t.Run("unknown vote is rejected locally", func(t *testing.T) {
		c := NewClient("http://localhost:0")
		_, err := c.SubmitFeedback(context.Background(), "inv-3", "totalAmount", "flip")
		if !IsValidation(err) {
			t.Errorf("error = %v, want a validation error", err)
		}
	})
}
