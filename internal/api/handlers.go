package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dormgate/internal/models"
	"dormgate/internal/upstream"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": session.ID,
		"tenant":     session.Tenant,
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := s.auth.Logout(r.Context(), sessionFrom(r.Context())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *HTTPServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tenant, err := s.auth.Verify(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenant": tenant})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	switch r.Method {
	case http.MethodGet:
		page := queryInt(r, "page", 1)
		perPage := queryInt(r, "per_page", 20)
		bookings, err := s.bookings.ListBookings(r.Context(), session, page, perPage)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})

	case http.MethodPost:
		var body struct {
			RoomID   int64  `json:"room_id"`
			CheckIn  string `json:"check_in"`
			CheckOut string `json:"check_out"`
			Notes    string `json:"notes"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.RoomID == 0 {
			writeError(w, http.StatusBadRequest, "room_id is required")
			return
		}
		checkIn, err := time.Parse("2006-01-02", body.CheckIn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_in format; expected YYYY-MM-DD")
			return
		}
		checkOut, err := time.Parse("2006-01-02", body.CheckOut)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid check_out format; expected YYYY-MM-DD")
			return
		}
		if !checkOut.After(checkIn) {
			writeError(w, http.StatusBadRequest, "check_out must be after check_in")
			return
		}

		booking, err := s.bookings.CreateBooking(r.Context(), session, upstream.CreateBookingRequest{
			RoomID:   body.RoomID,
			CheckIn:  checkIn,
			CheckOut: checkOut,
			Notes:    body.Notes,
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"booking": booking})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	if id, ok := parseID(rest); ok {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		booking, err := s.bookings.GetBooking(r.Context(), session, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"booking": booking})
		return
	}

	if id, ok := parseIDAction(rest, "cancel"); ok {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			Reason string `json:"reason"`
		}
		if r.ContentLength > 0 {
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}
		if err := s.bookings.CancelBooking(r.Context(), session, id, body.Reason); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
		return
	}

	writeError(w, http.StatusNotFound, "resource not found")
}

func (s *HTTPServer) handleAgreementTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	content, contentType, err := s.bookings.AgreementTemplate(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeFile(w, content, contentType, "agreement-template")
}

func (s *HTTPServer) handleInvoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	invoices, err := s.payments.ListInvoices(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (s *HTTPServer) handleInvoiceByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := parseID(strings.TrimPrefix(r.URL.Path, "/api/v1/invoices/"))
	if !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}

	invoice, err := s.payments.GetInvoice(r.Context(), sessionFrom(r.Context()), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoice": invoice})
}

func (s *HTTPServer) handlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payments, err := s.payments.ListPayments(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (s *HTTPServer) handlePaymentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id, ok := parseID(strings.TrimPrefix(r.URL.Path, "/api/v1/payments/"))
	if !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}

	payment, err := s.payments.GetPayment(r.Context(), sessionFrom(r.Context()), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payment": payment})
}

func (s *HTTPServer) handlePendingPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	invoiceID, err := strconv.ParseInt(r.URL.Query().Get("invoice_id"), 10, 64)
	if err != nil || invoiceID <= 0 {
		writeError(w, http.StatusBadRequest, "invoice_id is required")
		return
	}

	pending, err := s.payments.PendingManualPayments(r.Context(), sessionFrom(r.Context()), invoiceID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": pending})
}

func (s *HTTPServer) handleManualPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		InvoiceID     int64   `json:"invoice_id"`
		Amount        float64 `json:"amount"`
		BankName      string  `json:"bank_name"`
		AccountHolder string  `json:"account_holder"`
		TransferDate  string  `json:"transfer_date"`
		Notes         string  `json:"notes"`
		ProofFileName string  `json:"proof_file_name"`
		ProofContent  string  `json:"proof_content"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.InvoiceID <= 0 {
		writeError(w, http.StatusBadRequest, "invoice_id is required")
		return
	}
	if body.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	var transferDate time.Time
	if body.TransferDate != "" {
		var err error
		transferDate, err = time.Parse("2006-01-02", body.TransferDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid transfer_date format; expected YYYY-MM-DD")
			return
		}
	}

	payment, err := s.payments.SubmitManualPayment(r.Context(), sessionFrom(r.Context()), models.ManualPaymentSubmission{
		InvoiceID:     body.InvoiceID,
		Amount:        body.Amount,
		BankName:      body.BankName,
		AccountHolder: body.AccountHolder,
		TransferDate:  transferDate,
		Notes:         body.Notes,
		ProofFileName: body.ProofFileName,
		ProofContent:  body.ProofContent,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})
}

func (s *HTTPServer) handlePaymentExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	session := sessionFrom(r.Context())
	invoices, err := s.payments.ListInvoices(r.Context(), session)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	payments, err := s.payments.ListPayments(r.Context(), session)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	name, content, err := s.exporter.PaymentHistory(&session.Tenant, invoices, payments)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeFile(w, content, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name)
}

func (s *HTTPServer) handleDocumentTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	types, err := s.documents.ListDocumentTypes(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_types": types})
}

func (s *HTTPServer) handleDocuments(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	switch r.Method {
	case http.MethodGet:
		docs, err := s.documents.ListDocuments(r.Context(), session)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		identity, err := s.documents.HasApprovedIdentity(r.Context(), session)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"documents":             docs,
			"has_approved_identity": identity,
		})

	case http.MethodPost:
		var body struct {
			TypeID   int64  `json:"type_id"`
			FileName string `json:"file_name"`
			Content  string `json:"content"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.TypeID <= 0 {
			writeError(w, http.StatusBadRequest, "type_id is required")
			return
		}

		doc, err := s.documents.Upload(r.Context(), session, body.TypeID, body.FileName, body.Content)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"document": doc})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	session := sessionFrom(r.Context())
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/documents/")

	if id, ok := parseID(rest); ok {
		doc, err := s.documents.GetDocument(r.Context(), session, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"document": doc})
		return
	}

	if id, ok := parseIDAction(rest, "file"); ok {
		content, contentType, err := s.documents.FileContent(r.Context(), session, id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeFile(w, content, contentType, fmt.Sprintf("document-%d", id))
		return
	}

	writeError(w, http.StatusNotFound, "resource not found")
}

func (s *HTTPServer) handleIssues(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	switch r.Method {
	case http.MethodGet:
		overview, err := s.issues.Overview(r.Context(), session)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, overview)

	case http.MethodPost:
		var body struct {
			BookingID   int64               `json:"booking_id"`
			CategoryID  int64               `json:"category_id"`
			Title       string              `json:"title"`
			Description string              `json:"description"`
			Photos      []models.IssuePhoto `json:"photos"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.CategoryID <= 0 {
			writeError(w, http.StatusBadRequest, "category_id is required")
			return
		}
		if strings.TrimSpace(body.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		issue, err := s.issues.Report(r.Context(), session, upstream.CreateIssueRequest{
			BookingID:   body.BookingID,
			CategoryID:  body.CategoryID,
			Title:       body.Title,
			Description: body.Description,
			Photos:      body.Photos,
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"issue": issue})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	session := sessionFrom(r.Context())
	limit := queryInt(r, "limit", 50)

	entries, err := s.journal.ListByTenant(r.Context(), session.Tenant.ID, limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": entries})
}

func decodeBody(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// parseID matches a bare numeric path segment.
func parseID(rest string) (int64, bool) {
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" || strings.Contains(rest, "/") {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseIDAction matches "{id}/{action}".
func parseIDAction(rest, action string) (int64, bool) {
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != action {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error":    message,
		"redirect": "/login",
	})
}

func writeFile(w http.ResponseWriter, content []byte, contentType, name string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
