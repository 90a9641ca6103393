package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dormgate/internal/models"
)

func (c *Client) ListInvoices(ctx context.Context, token string) ([]models.Invoice, error) {
	var resp struct {
		Invoices []invoiceWire `json:"invoices"`
		Data     []invoiceWire `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/tenant/invoices", token, nil, &resp, callOpts{resource: "invoices"}); err != nil {
		return nil, err
	}

	wires := resp.Invoices
	if wires == nil {
		wires = resp.Data
	}
	out := make([]models.Invoice, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toModel())
	}
	return out, nil
}

func (c *Client) GetInvoice(ctx context.Context, token string, id int64) (*models.Invoice, error) {
	var resp struct {
		Invoice invoiceWire `json:"invoice"`
	}
	path := fmt.Sprintf("/tenant/invoices/%d", id)
	if err := c.call(ctx, http.MethodGet, path, token, nil, &resp, callOpts{resource: "invoices"}); err != nil {
		return nil, err
	}
	inv := resp.Invoice.toModel()
	return &inv, nil
}

func (c *Client) ListPayments(ctx context.Context, token string) ([]models.Payment, error) {
	var resp struct {
		Payments []paymentWire `json:"payments"`
		Data     []paymentWire `json:"data"`
	}
	if err := c.call(ctx, http.MethodGet, "/tenant/payments", token, nil, &resp, callOpts{resource: "payments"}); err != nil {
		return nil, err
	}

	wires := resp.Payments
	if wires == nil {
		wires = resp.Data
	}
	out := make([]models.Payment, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toModel())
	}
	return out, nil
}

func (c *Client) GetPayment(ctx context.Context, token string, id int64) (*models.Payment, error) {
	var resp struct {
		Payment paymentWire `json:"payment"`
	}
	path := fmt.Sprintf("/tenant/payments/%d", id)
	if err := c.call(ctx, http.MethodGet, path, token, nil, &resp, callOpts{resource: "payments"}); err != nil {
		return nil, err
	}
	p := resp.Payment.toModel()
	return &p, nil
}

// ListPendingManualPayments returns outstanding pending bank-transfer payments
// for an invoice. The manual-payment flow queries this before allowing a new
// submission.
func (c *Client) ListPendingManualPayments(ctx context.Context, token string, invoiceID int64) ([]models.Payment, error) {
	q := url.Values{}
	q.Set("invoice_id", strconv.FormatInt(invoiceID, 10))
	q.Set("status", models.StatusPaymentPending)
	q.Set("channel", models.ChannelBankTransfer)

	var resp struct {
		Payments []paymentWire `json:"payments"`
		Data     []paymentWire `json:"data"`
	}
	path := "/tenant/payments?" + q.Encode()
	if err := c.call(ctx, http.MethodGet, path, token, nil, &resp, callOpts{resource: "payments"}); err != nil {
		return nil, err
	}

	wires := resp.Payments
	if wires == nil {
		wires = resp.Data
	}
	out := make([]models.Payment, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.toModel())
	}
	return out, nil
}

// SubmitManualPayment posts the bank-transfer metadata together with the
// base64 proof image. The payload can be large, so the upload timeout applies.
func (c *Client) SubmitManualPayment(ctx context.Context, token string, sub models.ManualPaymentSubmission) (*models.Payment, error) {
	body := map[string]any{
		"invoice_id":      sub.InvoiceID,
		"amount":          sub.Amount,
		"channel":         models.ChannelBankTransfer,
		"bank_name":       sub.BankName,
		"account_holder":  sub.AccountHolder,
		"transfer_date":   sub.TransferDate.Format(time.RFC3339),
		"proof_file_name": sub.ProofFileName,
		"proof_type":      sub.ProofType,
		"proof_content":   sub.ProofContent,
	}
	if sub.Notes != "" {
		body["notes"] = sub.Notes
	}

	var resp struct {
		Payment paymentWire `json:"payment"`
	}
	err := c.call(ctx, http.MethodPost, "/tenant/payments/manual", token, body, &resp, callOpts{
		resource: "payments",
		timeout:  c.uploadTimeout,
	})
	if err != nil {
		return nil, err
	}
	p := resp.Payment.toModel()
	return &p, nil
}
