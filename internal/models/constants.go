package models

const (
	StatusBookingPending   = "pending"
	StatusBookingApproved  = "approved"
	StatusBookingRejected  = "rejected"
	StatusBookingCancelled = "cancelled"
	StatusBookingCheckedIn = "checked_in"
	StatusBookingCompleted = "completed"
)

const (
	StatusInvoiceUnpaid        = "unpaid"
	StatusInvoicePartiallyPaid = "partially_paid"
	StatusInvoicePaid          = "paid"
)

const (
	StatusPaymentPending  = "pending"
	StatusPaymentVerified = "verified"
	StatusPaymentRejected = "rejected"
)

const (
	ChannelBankTransfer  = "bank_transfer"
	ChannelDigitalWallet = "digital_wallet"
	ChannelCash          = "cash"
)

const (
	StatusDocumentPending  = "pending"
	StatusDocumentApproved = "approved"
	StatusDocumentRejected = "rejected"
)

const (
	StatusIssueOpen       = "open"
	StatusIssueInProgress = "in_progress"
	StatusIssueResolved   = "resolved"
	StatusIssueClosed     = "closed"
)

const (
	// DefaultSessionTTL время жизни сессии арендатора
	DefaultSessionTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultCacheTTL время жизни кэша ответов по умолчанию
	DefaultCacheTTL = 3 * 60 // 3 минуты в секундах

	// MaxIssuePhotos предельное число фотографий в заявке
	MaxIssuePhotos = 5

	// MaxUploadBytes предельный размер одного файла
	MaxUploadBytes = 5 * 1024 * 1024

	// WatcherQueueSize размер очереди воркера проверки статусов
	WatcherQueueSize = 1000
)
