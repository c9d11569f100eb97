package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fakti/internal/billing"
	"fakti/internal/caching"
	"fakti/internal/common"
	"fakti/internal/i18n"
	"fakti/internal/logging"
	"fakti/internal/mailer"
	"fakti/internal/models"
	"fakti/internal/pdf"
	"fakti/internal/reports"
	"fakti/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultPaymentTermDays = 30
	presignedPDFExpiry     = 24 * time.Hour
	exportPageSize         = 200
	maxSubjectLength       = 200
)

// InvoiceInput is an invoice as submitted by the owner. Line items arrive as
// raw values and are validated as a whole.
type InvoiceInput struct {
	ClientID        string              `json:"client_id" validate:"required"`
	InvoiceNumber   string              `json:"invoice_number" validate:"required,max=50"`
	IssueDate       string              `json:"issue_date" validate:"required"`
	DueDate         string              `json:"due_date" validate:"required"`
	Currency        string              `json:"currency" validate:"omitempty,len=3"`
	TaxPercent      billing.Amount      `json:"tax_percent" swaggertype:"string"`
	DiscountPercent billing.Amount      `json:"discount_percent" swaggertype:"string"`
	Notes           string              `json:"notes"`
	LineItems       []billing.LineInput `json:"line_items"`
}

// InvoiceDefaults prefills the form for a new invoice.
type InvoiceDefaults struct {
	InvoiceNumber string `json:"invoice_number"`
	IssueDate     string `json:"issue_date"`
	DueDate       string `json:"due_date"`
	Currency      string `json:"currency"`
}

// EmailDefaults prefills the send form of an invoice.
type EmailDefaults struct {
	To        string `json:"to"`
	Cc        string `json:"cc"`
	Bcc       string `json:"bcc"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	AttachPDF bool   `json:"attach_pdf"`
	ReplyTo   string `json:"reply_to"`
}

// SendInput is the send form. Address fields hold comma or semicolon
// separated lists.
type SendInput struct {
	To        string `json:"to"`
	Cc        string `json:"cc"`
	Bcc       string `json:"bcc"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	AttachPDF *bool  `json:"attach_pdf"`
	ReplyTo   string `json:"reply_to"`
}

// StoredPDF points at a rendered invoice in object storage.
type StoredPDF struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RenderedPDF is an invoice document ready to stream.
type RenderedPDF struct {
	Filename string
	Data     []byte
}

type InvoiceService interface {
	Defaults(ctx context.Context, ownerID uuid.UUID) (*InvoiceDefaults, error)
	CreateInvoice(ctx context.Context, ownerID uuid.UUID, in InvoiceInput) (*models.Invoice, error)
	GetInvoice(ctx context.Context, ownerID, id uuid.UUID) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, ownerID, id uuid.UUID, in InvoiceInput) (*models.Invoice, error)
	UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, status string) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, ownerID, id uuid.UUID) error
	ListInvoices(ctx context.Context, ownerID uuid.UUID, filter models.InvoiceFilter) ([]*models.Invoice, int, error)
	RenderPDF(ctx context.Context, ownerID, id uuid.UUID) (*RenderedPDF, error)
	StorePDF(ctx context.Context, ownerID, id uuid.UUID) (*StoredPDF, error)
	EmailDefaults(ctx context.Context, ownerID, id uuid.UUID) (*EmailDefaults, error)
	SendInvoice(ctx context.Context, ownerID, id uuid.UUID, in SendInput) (*models.Invoice, error)
	Export(ctx context.Context, ownerID uuid.UUID) ([]byte, error)
}

type InvoiceServiceConfig struct {
	DefaultCurrency string
	InvoiceBucket   string
}

type invoiceService struct {
	invoices  repositories.InvoiceRepository
	lineItems repositories.LineItemRepository
	clients   repositories.ClientRepository
	items     repositories.ItemRepository
	users     repositories.UserRepository
	userSvc   UserService
	cacheSvc  caching.CacheService
	storage   MinioService
	mail      mailer.Mailer
	validator *common.CustomValidator
	cfg       InvoiceServiceConfig
	logger    logrus.FieldLogger
	today     func() time.Time
}

func NewInvoiceService(
	invoices repositories.InvoiceRepository,
	lineItems repositories.LineItemRepository,
	clients repositories.ClientRepository,
	items repositories.ItemRepository,
	users repositories.UserRepository,
	userSvc UserService,
	cacheSvc caching.CacheService,
	storage MinioService,
	mail mailer.Mailer,
	cfg InvoiceServiceConfig,
	logger logrus.FieldLogger,
) InvoiceService {
	return &invoiceService{
		invoices:  invoices,
		lineItems: lineItems,
		clients:   clients,
		items:     items,
		users:     users,
		userSvc:   userSvc,
		cacheSvc:  cacheSvc,
		storage:   storage,
		mail:      mail,
		validator: common.NewValidator(),
		cfg:       cfg,
		logger:    logger,
		today:     common.Today,
	}
}

// Defaults suggests the next number from the owner's invoices created this
// year. The count is read on every call.
func (s *invoiceService) Defaults(ctx context.Context, ownerID uuid.UUID) (*InvoiceDefaults, error) {
	today := s.today()
	count, err := s.invoices.CountCreatedInYear(ctx, ownerID, today.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	return &InvoiceDefaults{
		InvoiceNumber: billing.NextNumber(today.Year(), count),
		IssueDate:     today.Format(common.DateLayout),
		DueDate:       today.AddDate(0, 0, defaultPaymentTermDays).Format(common.DateLayout),
		Currency:      s.cfg.DefaultCurrency,
	}, nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, ownerID uuid.UUID, in InvoiceInput) (*models.Invoice, error) {
	invoice := &models.Invoice{
		ID:     uuid.New(),
		Status: models.InvoiceStatusDraft,
	}
	if err := s.apply(ctx, ownerID, invoice, in, nil); err != nil {
		return nil, err
	}

	if err := s.invoices.Create(ctx, ownerID, invoice); err != nil {
		return nil, s.translateWriteError(err)
	}
	s.invalidate(ctx, ownerID)
	invoice.IsOverdue = billing.IsOverdue(invoice.DueDate, invoice.Status, s.today())
	return invoice, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, ownerID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	invoice.IsOverdue = billing.IsOverdue(invoice.DueDate, invoice.Status, s.today())
	return invoice, nil
}

// UpdateInvoice replaces the editable fields and every line item. The status
// is left as it is.
func (s *invoiceService) UpdateInvoice(ctx context.Context, ownerID, id uuid.UUID, in InvoiceInput) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, ownerID, invoice, in, &invoice.ID); err != nil {
		return nil, err
	}

	if err := s.invoices.Update(ctx, ownerID, invoice); err != nil {
		return nil, s.translateWriteError(err)
	}
	s.invalidate(ctx, ownerID)
	invoice.IsOverdue = billing.IsOverdue(invoice.DueDate, invoice.Status, s.today())
	return invoice, nil
}

// UpdateStatus sets any known status, whatever the current one is.
func (s *invoiceService) UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, status string) (*models.Invoice, error) {
	next := models.InvoiceStatus(strings.TrimSpace(status))
	if !next.IsValid() {
		return nil, FieldErrors{"status": "Select a valid choice."}
	}
	if err := s.invoices.UpdateStatus(ctx, ownerID, id, next); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return s.GetInvoice(ctx, ownerID, id)
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.invoices.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID)
	return nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, ownerID uuid.UUID, filter models.InvoiceFilter) ([]*models.Invoice, int, error) {
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	invoices, total, err := s.invoices.List(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, err
	}
	markOverdue(invoices, s.today())
	return invoices, total, nil
}

func (s *invoiceService) RenderPDF(ctx context.Context, ownerID, id uuid.UUID) (*RenderedPDF, error) {
	doc, err := s.loadDocument(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	data, err := pdf.Render(*doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", doc.Invoice.InvoiceNumber, err)
	}
	return &RenderedPDF{
		Filename: pdf.Filename(doc.Invoice.InvoiceNumber, doc.Client.Name),
		Data:     data,
	}, nil
}

// StorePDF renders the invoice into the invoice bucket and returns a link
// valid for a day.
func (s *invoiceService) StorePDF(ctx context.Context, ownerID, id uuid.UUID) (*StoredPDF, error) {
	rendered, err := s.RenderPDF(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s/%s", ownerID, id, rendered.Filename)
	err = s.storage.PutObject(ctx, s.cfg.InvoiceBucket, key, bytes.NewReader(rendered.Data), int64(len(rendered.Data)), "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to store invoice pdf: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.InvoiceBucket, key, presignedPDFExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign invoice pdf url: %w", err)
	}
	return &StoredPDF{Key: key, URL: url, ExpiresAt: time.Now().Add(presignedPDFExpiry)}, nil
}

func (s *invoiceService) EmailDefaults(ctx context.Context, ownerID, id uuid.UUID) (*EmailDefaults, error) {
	invoice, err := s.invoices.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, ownerID, invoice.ClientID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	lang := common.GetLanguageFromContext(ctx)
	return &EmailDefaults{
		To:      client.Email,
		Subject: i18n.T(lang, "[Fakti] Invoice %s for %s", invoice.InvoiceNumber, client.Name),
		Message: i18n.T(lang, "Hello %s,\n\nPlease find attached your invoice %s totaling %s %s.\n\nThank you,\n%s",
			client.Name, invoice.InvoiceNumber, invoice.Total.StringFixed(billing.CurrencyPlaces), invoice.Currency, owner.SenderName()),
		AttachPDF: true,
		ReplyTo:   owner.Email,
	}, nil
}

// SendInvoice mails the invoice. A draft becomes sent only once delivery
// succeeded; other statuses are left alone. Delivery failures wrap
// ErrDeliveryFailed and never touch the invoice.
func (s *invoiceService) SendInvoice(ctx context.Context, ownerID, id uuid.UUID, in SendInput) (*models.Invoice, error) {
	defaults, err := s.EmailDefaults(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	msg, fieldErrs := s.buildMessage(in, defaults)
	if err := fieldErrs.orNil(); err != nil {
		return nil, err
	}

	attach := in.AttachPDF == nil || *in.AttachPDF
	if attach {
		rendered, err := s.RenderPDF(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		msg.Attachments = append(msg.Attachments, mailer.Attachment{
			Filename:    rendered.Filename,
			ContentType: "application/pdf",
			Data:        rendered.Data,
		})
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		logging.LogError(s.logger, "invoices", "SendInvoice", "deliver", id, err)
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	changed, err := s.invoices.MarkSentIfDraft(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invoice sent: %w", err)
	}
	if changed {
		s.invalidate(ctx, ownerID)
	}
	return s.GetInvoice(ctx, ownerID, id)
}

func (s *invoiceService) buildMessage(in SendInput, defaults *EmailDefaults) (*mailer.Message, FieldErrors) {
	errs := FieldErrors{}

	to := common.SplitEmailList(in.To)
	if len(to) == 0 {
		errs["to"] = "Enter at least one recipient."
	}
	for field, addrs := range map[string][]string{"to": to, "cc": common.SplitEmailList(in.Cc), "bcc": common.SplitEmailList(in.Bcc)} {
		for _, addr := range addrs {
			if !s.validator.IsEmail(addr) {
				errs[field] = "Enter a valid email address."
				break
			}
		}
	}

	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = defaults.Subject
	}
	if len([]rune(subject)) > maxSubjectLength {
		errs["subject"] = fmt.Sprintf("Ensure this value has at most %d characters.", maxSubjectLength)
	}

	body := in.Message
	if strings.TrimSpace(body) == "" {
		body = defaults.Message
	}

	replyTo := strings.TrimSpace(in.ReplyTo)
	if replyTo == "" {
		replyTo = defaults.ReplyTo
	} else if !s.validator.IsEmail(replyTo) {
		errs["reply_to"] = "Enter a valid email address."
	}

	return &mailer.Message{
		To:      to,
		Cc:      common.SplitEmailList(in.Cc),
		Bcc:     common.SplitEmailList(in.Bcc),
		ReplyTo: replyTo,
		Subject: subject,
		Body:    body,
	}, errs
}

// Export writes every invoice of the owner, with line items, to an xlsx
// workbook.
func (s *invoiceService) Export(ctx context.Context, ownerID uuid.UUID) ([]byte, error) {
	var all []*models.Invoice
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.invoices.List(ctx, ownerID, models.InvoiceFilter{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total {
			break
		}
	}

	for _, inv := range all {
		lines, err := s.lineItems.ListByInvoice(ctx, ownerID, inv.ID)
		if err != nil {
			return nil, err
		}
		inv.LineItems = lines
	}
	return reports.InvoiceWorkbook(all, common.GetLanguageFromContext(ctx))
}

// apply validates in and copies it onto invoice with fresh totals. excludeID
// is the invoice being edited, nil on create.
func (s *invoiceService) apply(ctx context.Context, ownerID uuid.UUID, invoice *models.Invoice, in InvoiceInput, excludeID *uuid.UUID) error {
	errs := FieldErrors{}

	clientID, err := uuid.Parse(strings.TrimSpace(in.ClientID))
	if err != nil {
		errs["client_id"] = "Select a valid choice."
	}
	issueDate, err := common.ParseDate(in.IssueDate, "issue_date")
	if err != nil {
		errs["issue_date"] = "Enter a valid date."
	}
	dueDate, err := common.ParseDate(in.DueDate, "due_date")
	if err != nil {
		errs["due_date"] = "Enter a valid date."
	}
	taxPercent, err := billing.ParsePercent(in.TaxPercent)
	if err != nil {
		errs["tax_percent"] = err.Error()
	}
	discountPercent, err := billing.ParsePercent(in.DiscountPercent)
	if err != nil {
		errs["discount_percent"] = err.Error()
	}
	lines, lineErrs := billing.ValidateLineItems(in.LineItems)
	errs.merge(lineErrs.Details())

	number := strings.TrimSpace(in.InvoiceNumber)
	if number == "" {
		errs["invoice_number"] = "This field is required."
	}

	if len(errs) > 0 {
		return errs
	}

	if _, err := s.clients.GetByID(ctx, ownerID, clientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return FieldErrors{"client_id": "Select a valid choice."}
		}
		return err
	}
	if err := s.checkItemsOwned(ctx, ownerID, in.LineItems); err != nil {
		return err
	}

	exists, err := s.invoices.NumberExists(ctx, ownerID, number, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check invoice number: %w", err)
	}
	if exists {
		return FieldErrors{"invoice_number": "This invoice number is already used for your account."}
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	invoice.ClientID = clientID
	invoice.InvoiceNumber = number
	invoice.IssueDate = issueDate
	invoice.DueDate = dueDate
	invoice.Currency = currency
	invoice.TaxPercent = taxPercent
	invoice.DiscountPercent = discountPercent
	invoice.Notes = strings.TrimSpace(in.Notes)
	invoice.LineItems = lines
	billing.ApplyTotals(invoice)
	return nil
}

// checkItemsOwned reports every line whose catalog item is not one of the
// owner's items.
func (s *invoiceService) checkItemsOwned(ctx context.Context, ownerID uuid.UUID, inputs []billing.LineInput) error {
	refs := make(map[int]uuid.UUID)
	var ids []uuid.UUID
	for i, in := range inputs {
		raw := strings.TrimSpace(in.ItemID)
		if raw == "" {
			continue
		}
		if id, err := uuid.Parse(raw); err == nil {
			refs[i] = id
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	found, err := s.items.GetMany(ctx, ownerID, ids)
	if err != nil {
		return fmt.Errorf("failed to load catalog items: %w", err)
	}
	owned := make(map[uuid.UUID]bool, len(found))
	for _, item := range found {
		owned[item.ID] = true
	}

	errs := FieldErrors{}
	for i, id := range refs {
		if !owned[id] {
			errs[fmt.Sprintf("line_items[%d].item_id", i)] = "Select a valid choice."
		}
	}
	return errs.orNil()
}

func (s *invoiceService) loadDocument(ctx context.Context, ownerID, id uuid.UUID) (*pdf.Document, error) {
	invoice, err := s.invoices.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, ownerID, invoice.ClientID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	logo, logoType, err := s.userSvc.GetLogo(ctx, owner)
	if err != nil {
		logging.LogError(s.logger, "invoices", "loadDocument", "logo", ownerID, err)
		logo, logoType = nil, ""
	}

	return &pdf.Document{
		Invoice:  invoice,
		Client:   client,
		Owner:    owner,
		Logo:     logo,
		LogoType: logoType,
		Language: common.GetLanguageFromContext(ctx),
	}, nil
}

// translateWriteError turns a catalog item rejected by the foreign key into
// a field error. The number constraint error is passed through.
func (s *invoiceService) translateWriteError(err error) error {
	if errors.Is(err, repositories.ErrItemNotOwned) {
		return FieldErrors{"line_items": "Select a valid choice."}
	}
	if errors.Is(err, repositories.ErrDuplicateIdentifier) {
		return err
	}
	return fmt.Errorf("failed to save invoice: %w", err)
}

func (s *invoiceService) invalidate(ctx context.Context, ownerID uuid.UUID) {
	if err := s.cacheSvc.InvalidateDashboard(ctx, ownerID); err != nil {
		logging.LogError(s.logger, "invoices", "invalidate", "dashboard cache", ownerID, err)
	}
}

func markOverdue(invoices []*models.Invoice, today time.Time) {
	for _, inv := range invoices {
		inv.IsOverdue = billing.IsOverdue(inv.DueDate, inv.Status, today)
	}
}
